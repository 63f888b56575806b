package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with the channel and cycle data stored in the
// record's context.
type Handler struct {
	slog.Handler
}

// Wrap decorates h with Handler unless it already is one, so loggers passed
// through several layers do not repeat the groups.
func Wrap(h slog.Handler) slog.Handler {
	if _, ok := h.(Handler); ok {
		return h
	}
	return Handler{Handler: h}
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if cd, ok := ctx.Value(channelDataKey{}).(*ChannelData); ok {
		attrs := []any{slog.String("transport", cd.Transport)}
		if cd.Addr != "" {
			attrs = append(attrs, slog.String("addr", cd.Addr))
		}
		if cd.PID != 0 {
			attrs = append(attrs, slog.Int("pid", cd.PID))
		}
		r.AddAttrs(slog.Group("chan", attrs...))
	}

	if cy, ok := ctx.Value(cycleDataKey{}).(*CycleData); ok {
		r.AddAttrs(slog.Group("cycle",
			slog.Uint64("n", cy.N),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{h.Handler.WithGroup(name)}
}

type channelDataKey struct{}

type ChannelData struct {
	Transport string
	Addr      string
	PID       int
}

func WithChannelData(ctx context.Context, data *ChannelData) context.Context {
	return context.WithValue(ctx, channelDataKey{}, data)
}

type cycleDataKey struct{}

type CycleData struct {
	N uint64
}

func WithCycleData(ctx context.Context, data *CycleData) context.Context {
	return context.WithValue(ctx, cycleDataKey{}, data)
}
