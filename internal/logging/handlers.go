package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// Fanout delivers every record to each sink that accepts its level.
type Fanout struct {
	sinks []slog.Handler
}

// NewFanout skips nil sinks.
func NewFanout(sinks ...slog.Handler) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f.sinks, func(s slog.Handler) bool {
		return s.Enabled(ctx, level)
	})
}

// Handle returns the errors of the sinks that failed. The remaining sinks still get the record.
func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range f.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.derive(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

func (f *Fanout) derive(fn func(slog.Handler) slog.Handler) *Fanout {
	sinks := make([]slog.Handler, len(f.sinks))
	for i, s := range f.sinks {
		sinks[i] = fn(s)
	}
	return &Fanout{sinks: sinks}
}

// ContextProvider returns attributes evaluated again for every record, such as the
// current session id.
type ContextProvider func() []slog.Attr

type contextHandler struct {
	slog.Handler
	provider ContextProvider
}

// withContext decorates h so each record carries the provider's attributes.
func withContext(h slog.Handler, provider ContextProvider) slog.Handler {
	if provider == nil {
		return h
	}
	return &contextHandler{Handler: h, provider: provider}
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.provider()...)
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), provider: h.provider}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &contextHandler{Handler: h.Handler.WithGroup(name), provider: h.provider}
}
