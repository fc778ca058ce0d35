package logging

import (
	"context"
	"log/slog"
	"slices"
)

type attrsKey struct{}

// AppendAttrs returns a context whose log records carry attrs in addition to those already
// attached to ctx.
func AppendAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return context.WithValue(ctx, attrsKey{}, slices.Concat(prev, attrs))
}

// WithPlan tags records logged with the returned context with a plan identifier.
func WithPlan(ctx context.Context, planID string) context.Context {
	return AppendAttrs(ctx, slog.String("plan", planID))
}

// WithVehicle tags records logged with the returned context with a vehicle identifier.
func WithVehicle(ctx context.Context, vehicle string) context.Context {
	return AppendAttrs(ctx, slog.String("vehicle", vehicle))
}

// ContextHandler adds the attributes attached to the record context.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler wraps inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(attrsKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
