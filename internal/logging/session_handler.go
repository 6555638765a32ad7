package logging

import (
	"context"
	"log/slog"

	"mediashelf/internal/services"
)

// sessionHandler stamps every record with the collection session id, plus the
// item index and correlation id carried by the record's context when the
// caller logged through one of the *Context methods.
type sessionHandler struct {
	base      slog.Handler
	sessionID string
}

// WithSession returns a logger whose records all carry the given session id.
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if sessionID == "" {
		return logger
	}
	return slog.New(&sessionHandler{base: logger.Handler(), sessionID: sessionID})
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	if ctx != nil {
		if idx, ok := services.ItemIndexFromContext(ctx); ok {
			record.AddAttrs(slog.Int(FieldItemIndex, idx))
		}
		if rid, ok := services.RequestIDFromContext(ctx); ok {
			record.AddAttrs(slog.String(FieldCorrelationID, rid))
		}
	}
	return h.base.Handle(ctx, record)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionHandler{base: h.base.WithAttrs(attrs), sessionID: h.sessionID}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	return &sessionHandler{base: h.base.WithGroup(name), sessionID: h.sessionID}
}
