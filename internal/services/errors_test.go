package services_test

import (
	"errors"
	"strings"
	"testing"

	"mediashelf/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrSearch, "orchestrator", "resolve", "batch failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrSearch) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"orchestrator", "resolve", "batch failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

type shownError struct{ msg string }

func (e shownError) Error() string       { return "wrapped: " + e.msg }
func (e shownError) UserMessage() string { return e.msg }

func TestUserMessagePrefersCarriedText(t *testing.T) {
	err := services.Wrap(services.ErrExtraction, "extraction", "text", "", shownError{msg: "no items found"})
	if got := services.UserMessage(err); got != "no items found" {
		t.Fatalf("expected verbatim message, got %q", got)
	}
}

func TestUserMessageUsesRootCause(t *testing.T) {
	err := services.Wrap(services.ErrCommit, "library", "commit", "insert", errors.New("disk full"))
	got := services.UserMessage(err)
	if !strings.HasSuffix(got, "disk full") {
		t.Fatalf("expected root cause in message, got %q", got)
	}
	if services.UserMessage(nil) != "" {
		t.Fatal("expected empty message for nil error")
	}
}

func TestRetryable(t *testing.T) {
	if services.Retryable(services.Wrap(services.ErrValidation, "", "", "bad", nil)) {
		t.Fatal("validation errors are not retryable")
	}
	if !services.Retryable(services.Wrap(services.ErrSearch, "", "", "down", nil)) {
		t.Fatal("search errors are retryable")
	}
	if services.Retryable(nil) {
		t.Fatal("nil is not retryable")
	}
}
