package logging

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"gitlab.com/souqly/auth-backend/pkg/env"
)

// Setup installs the process wide slog logger. Records go to w (JSON in prod, text otherwise)
// and to the global OpenTelemetry log provider.
func Setup(w io.Writer, mode env.Mode, serviceName string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: mode.SlogLevel()}

	var local slog.Handler
	if mode == env.Prod {
		local = slog.NewJSONHandler(w, opts)
	} else {
		local = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(fanout{local, otelslog.NewHandler(serviceName)})
	slog.SetDefault(logger)
	return logger
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
