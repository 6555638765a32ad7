package extraction

import (
	"errors"
	"strings"

	"mediashelf/internal/content"
	"mediashelf/internal/services"
)

// Result is the collaborator output: the extracted items plus the URL they
// came from, when there was one.
type Result struct {
	Items     []content.ExtractedItem
	SourceURL string
}

// Error carries an extraction failure message meant for the user verbatim.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

// UserMessage returns the collaborator-reported text.
func (e *Error) UserMessage() string { return e.Error() }

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return target == services.ErrExtraction }

// Failure builds an *Error with the given message and optional cause.
func Failure(message string, cause error) *Error {
	return &Error{Message: strings.TrimSpace(message), Cause: cause}
}

// AsError returns err as *Error, wrapping foreign errors so their text is
// still surfaced unchanged.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var extractionErr *Error
	if errors.As(err, &extractionErr) {
		return extractionErr
	}
	return &Error{Message: err.Error(), Cause: err}
}
