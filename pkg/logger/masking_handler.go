package logger

import (
	"context"
	"log/slog"
	"strings"
)

const maskedValue = "***"

// Attribute keys that must never reach a log sink in the clear. Raw
// credential secrets in particular exist only between generation and the
// reply to the user.
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"secret":        {},
	"secret_hash":   {},
	"token":         {},
	"auth":          {},
	"authorization": {},
}

// MaskingHandler replaces sensitive attribute values with a placeholder
// before handing the record to the wrapped handler.
type MaskingHandler struct {
	next slog.Handler
}

func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MaskingHandler{next: h.next.WithAttrs(attrs)}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		if _, sensitive := sensitiveKeys[strings.ToLower(attr.Key)]; sensitive {
			attr.Value = slog.StringValue(maskedValue)
		}
		out.AddAttrs(attr)
		return true
	})

	return h.next.Handle(ctx, out)
}
