package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"mediashelf/internal/services"
)

func TestWithSessionStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSession(slog.New(slog.NewJSONHandler(&buf, nil)), "session-abc").With("extra", "value")
	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"session_id":"session-abc"`) {
		t.Fatalf("expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Fatalf("expected extra attr in output, got: %s", output)
	}
}

func TestWithSessionAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSession(slog.New(slog.NewJSONHandler(&buf, nil)), "s-1")

	ctx := services.WithItemIndex(services.WithRequestID(context.Background(), "req-9"), 4)
	logger.InfoContext(ctx, "item searched")

	output := buf.String()
	if !strings.Contains(output, `"item_index":4`) || !strings.Contains(output, `"correlation_id":"req-9"`) {
		t.Fatalf("expected context fields, got: %s", output)
	}
}

func TestWithSessionDegenerateInputs(t *testing.T) {
	if WithSession(nil, "x") == nil {
		t.Fatal("expected nop logger for nil base")
	}
	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	if WithSession(base, "") != base {
		t.Fatal("expected the base logger back for an empty session id")
	}
}

func TestFormatValueTruncatesLongStrings(t *testing.T) {
	long := strings.Repeat("가", maxConsoleValueRunes+10)
	got := formatValue(slog.StringValue(long))
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != maxConsoleValueRunes+1 {
		t.Fatalf("unexpected truncation: %d runes", len([]rune(got)))
	}
	if formatValue(slog.StringValue("")) != `""` {
		t.Fatal("expected empty string quoted")
	}
	if formatValue(slog.IntValue(3)) != "3" {
		t.Fatal("unexpected int rendering")
	}
}
