package httpserver

import (
	"context"
	"log/slog"
)

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h noopHandler) WithGroup(string) slog.Handler           { return h }

// newNoopLogger returns a logger that drops everything, used when no
// logger option is supplied.
func newNoopLogger() *slog.Logger {
	return slog.New(noopHandler{})
}
