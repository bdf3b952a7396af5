package telemetry

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values fall back
// to info.
func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a JSON logger that stamps every record written with a
// span in its context with trace_id and span_id.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(&traceHandler{base: base})
}

// handlerOp is one WithAttrs or WithGroup call, replayed in order so that
// attributes added after a group stay inside it.
type handlerOp struct {
	group string
	attrs []slog.Attr
}

type traceHandler struct {
	base slog.Handler
	ops  []handlerOp
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	handler := h.base

	// trace ids stay top-level regardless of any open group
	if traceID, spanID := TraceIDs(ctx); traceID != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("trace_id", traceID),
			slog.String("span_id", spanID),
		})
	}

	for _, op := range h.ops {
		if op.group != "" {
			handler = handler.WithGroup(op.group)
		} else {
			handler = handler.WithAttrs(op.attrs)
		}
	}

	return handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(handlerOp{attrs: attrs})
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(handlerOp{group: name})
}

func (h *traceHandler) with(op handlerOp) *traceHandler {
	ops := make([]handlerOp, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &traceHandler{base: h.base, ops: append(ops, op)}
}
