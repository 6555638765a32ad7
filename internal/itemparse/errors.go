package itemparse

import (
	"fmt"
	"strconv"
	"strings"

	"mediashelf/internal/services"
)

// ValidationError reports malformed structured input. Positions are 1-based
// indices of the offending array elements; it is empty when the payload as a
// whole is unusable.
type ValidationError struct {
	Reason    string
	Positions []int
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.UserMessage()
}

// UserMessage renders the reason and offending positions.
func (e *ValidationError) UserMessage() string {
	if len(e.Positions) == 0 {
		return e.Reason
	}
	parts := make([]string, len(e.Positions))
	for i, pos := range e.Positions {
		parts[i] = strconv.Itoa(pos)
	}
	label := "position"
	if len(parts) > 1 {
		label = "positions"
	}
	return fmt.Sprintf("%s at %s %s", e.Reason, label, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == services.ErrValidation }
