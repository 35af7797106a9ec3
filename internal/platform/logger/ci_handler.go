package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/phrazzld/kanji-ink/internal/ciutil"
)

// CIHandler is a slog.Handler that adds CI run metadata to every record so
// logs from parallel pipeline runs can be told apart.
type CIHandler struct {
	handler  slog.Handler
	metadata []slog.Attr
}

// NewCIHandler creates a JSON CIHandler writing to out.
func NewCIHandler(out io.Writer, opts *slog.HandlerOptions) *CIHandler {
	return newCIHandler(slog.NewJSONHandler(out, opts), ciutil.Metadata())
}

func newCIHandler(handler slog.Handler, metadata map[string]string) *CIHandler {
	attrs := make([]slog.Attr, 0, len(metadata))
	for k, v := range metadata {
		attrs = append(attrs, slog.String(k, v))
	}
	return &CIHandler{handler: handler, metadata: attrs}
}

// Enabled implements the slog.Handler interface.
func (h *CIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs implements the slog.Handler interface.
func (h *CIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CIHandler{handler: h.handler.WithAttrs(attrs), metadata: h.metadata}
}

// WithGroup implements the slog.Handler interface.
func (h *CIHandler) WithGroup(name string) slog.Handler {
	return &CIHandler{handler: h.handler.WithGroup(name), metadata: h.metadata}
}

// Handle implements the slog.Handler interface.
func (h *CIHandler) Handle(ctx context.Context, record slog.Record) error {
	enhanced := record.Clone()
	enhanced.AddAttrs(h.metadata...)
	return h.handler.Handle(ctx, enhanced)
}
