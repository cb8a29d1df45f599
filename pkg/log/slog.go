package log

import (
	"context"
	"log/slog"

	"github.com/go-logr/logr"
)

// logrHandler adapts a logr.Logger (backed by zerologr over our zerolog
// logger) into a slog.Handler, so reactorq.WithLog can use the same sink
// the rest of a service already logs through.
type logrHandler struct {
	l logr.Logger
}

// NewSlogHandler wraps l as a slog.Handler.
func NewSlogHandler(l logr.Logger) slog.Handler {
	return &logrHandler{l: l}
}

func (h *logrHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *logrHandler) Handle(_ context.Context, rec slog.Record) error {
	kvs := make([]any, 0, rec.NumAttrs()*2)
	rec.Attrs(func(a slog.Attr) bool {
		kvs = append(kvs, a.Key, a.Value.Any())
		return true
	})

	if rec.Level >= slog.LevelError {
		h.l.Error(nil, rec.Message, kvs...)
		return nil
	}
	h.l.V(verbosity(rec.Level)).Info(rec.Message, kvs...)
	return nil
}

func (h *logrHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	kvs := make([]any, 0, len(attrs)*2)
	for _, a := range attrs {
		kvs = append(kvs, a.Key, a.Value.Any())
	}
	return &logrHandler{l: h.l.WithValues(kvs...)}
}

func (h *logrHandler) WithGroup(name string) slog.Handler {
	return &logrHandler{l: h.l.WithName(name)}
}

func verbosity(l slog.Level) int {
	if l >= slog.LevelInfo {
		return 0
	}
	return 1
}
