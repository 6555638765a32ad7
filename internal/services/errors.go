package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrExtraction    = errors.New("extraction failed")
	ErrSearch        = errors.New("search failed")
	ErrCommit        = errors.New("commit failed")
	ErrConfiguration = errors.New("configuration error")
	ErrBusy          = errors.New("operation already in progress")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// userMessager is implemented by errors that carry a message meant to be shown
// to a person as-is.
type userMessager interface {
	UserMessage() string
}

// UserMessage renders err as a single human-readable line. Errors that carry
// their own user-facing text (validation positions, extraction messages) win
// over the wrapped marker chain.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, ErrBusy):
		return "another operation is still running; wait for it to finish"
	case errors.Is(err, ErrSearch):
		return "content search is unavailable: " + rootCause(err)
	case errors.Is(err, ErrCommit):
		return "saving failed, nothing was committed: " + rootCause(err)
	}
	return err.Error()
}

// Retryable reports whether a user-initiated retry could plausibly succeed.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return false
	default:
		return true
	}
}

func rootCause(err error) string {
	for {
		var next error
		switch wrapped := err.(type) {
		case interface{ Unwrap() []error }:
			if parts := wrapped.Unwrap(); len(parts) > 0 {
				next = parts[len(parts)-1]
			}
		case interface{ Unwrap() error }:
			next = wrapped.Unwrap()
		}
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
