package ioserverlib

import (
	"io"
	"log/slog"
)

// DefaultMaxFrameSize bounds a single frame payload.
const DefaultMaxFrameSize = 8 * 1024 * 1024

// Peer describes the other end of a channel. It only feeds diagnostics.
type Peer struct {
	Transport string
	Addr      string
	PID       int
}

// Option customizes a Channel.
type Option func(*options)

type options struct {
	maxFrameSize int
	l            *slog.Logger
	closers      []io.Closer
	peer         Peer
}

func defaultOptions() options {
	return options{
		maxFrameSize: DefaultMaxFrameSize,
		l:            slog.New(slog.DiscardHandler),
		peer:         Peer{Transport: "stream"},
	}
}

// WithMaxFrameSize caps the payload size accepted by Read.
func WithMaxFrameSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFrameSize = n
		}
	}
}

// WithLogger sets the logger used for frame tracing at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.l = l
		}
	}
}

// WithCloser registers an extra resource released by Channel.Close, after
// the stream itself.
func WithCloser(c io.Closer) Option {
	return func(o *options) {
		if c != nil {
			o.closers = append(o.closers, c)
		}
	}
}

// WithPeer labels the channel's remote end in log records.
func WithPeer(p Peer) Option {
	return func(o *options) {
		if p.Transport != "" {
			o.peer = p
		}
	}
}
