package stdio

import (
	"context"

	"github.com/krypt0nn/ioserverlib"
	"github.com/krypt0nn/ioserverlib/codec"
)

// NewChannel returns a channel reading frames from stdin and writing them to
// stdout. The default streams are wrapped so that closing the channel leaves
// them open; streams supplied through options are closed if they are
// closers.
func NewChannel[M any](c codec.Codec[M], opts ...Option) *ioserverlib.Channel[M] {
	cfg := newConfig(opts)
	return newChannel(cfg, c)
}

func newChannel[M any](cfg config, c codec.Codec[M]) *ioserverlib.Channel[M] {
	chanOpts := append([]ioserverlib.Option{
		ioserverlib.WithPeer(ioserverlib.Peer{Transport: "stdio"}),
		ioserverlib.WithLogger(cfg.l),
	}, cfg.chanOpts...)
	return ioserverlib.NewSplit(cfg.r, cfg.w, c, chanOpts...)
}

// Serve runs h over stdin/stdout until the parent closes stdin (nil is
// returned), ctx is done, or a fatal error occurs.
func Serve[M any](ctx context.Context, c codec.Codec[M], h ioserverlib.Handler[M], opts ...Option) error {
	cfg := newConfig(opts)
	ch := newChannel(cfg, c)
	defer ch.Close()

	srvOpts := append([]ioserverlib.ServerOption{ioserverlib.WithServerLogger(cfg.l)}, cfg.srvOpts...)
	srv := ioserverlib.NewServer(ch, h, srvOpts...)

	cfg.l.DebugContext(ctx, "stdio server started")
	return srv.Serve(ctx)
}
