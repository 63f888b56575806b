package ioserverlib

import (
	"context"
	"errors"
	"log/slog"

	"github.com/krypt0nn/ioserverlib/internal/logctx"
)

// Handler maps an incoming message to an optional reply. Returning ok ==
// false means no reply is sent, which is how one-way notifications are
// handled.
type Handler[M any] func(m M) (reply M, ok bool)

// ErrorHandler decides whether Serve stops on err. It is never consulted for
// the clean end of stream, which always ends Serve.
type ErrorHandler func(err error) (stop bool)

// StopOnIOError is the default ErrorHandler: decode and encode errors are
// logged and the loop continues, anything else stops it.
func StopOnIOError(err error) bool {
	var (
		decErr *DecodeError
		encErr *EncodeError
	)
	return !errors.As(err, &decErr) && !errors.As(err, &encErr)
}

// ServerOption customizes a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	l       *slog.Logger
	onError ErrorHandler
}

// WithServerLogger sets the logger Serve reports failed cycles to.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.l = l
		}
	}
}

// WithErrorHandler overrides the stop policy used by Serve.
func WithErrorHandler(fn ErrorHandler) ServerOption {
	return func(o *serverOptions) {
		if fn != nil {
			o.onError = fn
		}
	}
}

// Server runs read, handle, reply cycles on one Channel. The caller owns the
// loop: call Update repeatedly, or use Serve.
type Server[M any] struct {
	ch      *Channel[M]
	handler Handler[M]
	l       *slog.Logger
	onError ErrorHandler
}

// NewServer constructs a Server that owns ch.
func NewServer[M any](ch *Channel[M], h Handler[M], opts ...ServerOption) *Server[M] {
	o := serverOptions{
		l:       slog.New(slog.DiscardHandler),
		onError: StopOnIOError,
	}
	for _, opt := range opts {
		opt(&o)
	}
	l := slog.New(logctx.Wrap(o.l.Handler()))
	return &Server[M]{ch: ch, handler: h, l: l, onError: o.onError}
}

// Channel returns the owned channel.
func (s *Server[M]) Channel() *Channel[M] { return s.ch }

// Update performs one cycle: it reads a message, passes it to the handler on
// the calling goroutine and writes the reply, if any. Read and write errors
// are returned unchanged; a failed read never reaches the handler.
func (s *Server[M]) Update() error {
	m, err := s.ch.Read()
	if err != nil {
		return err
	}

	reply, ok := s.handler(m)
	if !ok {
		return nil
	}
	return s.ch.Write(reply)
}

// Serve calls Update until the peer ends the stream (nil is returned), ctx is
// done, or the ErrorHandler asks to stop on an error (that error is
// returned). ctx is only checked between cycles; closing the channel is the
// only way to release a blocked read.
func (s *Server[M]) Serve(ctx context.Context) error {
	p := s.ch.Peer()
	ctx = logctx.WithChannelData(ctx, &logctx.ChannelData{Transport: p.Transport, Addr: p.Addr, PID: p.PID})

	var n uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n++

		err := s.Update()
		if err == nil {
			continue
		}

		cctx := logctx.WithCycleData(ctx, &logctx.CycleData{N: n})
		if IsEndOfStream(err) {
			s.l.DebugContext(cctx, "peer closed stream")
			return nil
		}
		if s.onError(err) {
			s.l.ErrorContext(cctx, "server stopped", slog.String("err", err.Error()))
			return err
		}
		s.l.WarnContext(cctx, "cycle failed", slog.String("err", err.Error()))
	}
}
