package stdio

import (
	"io"
	"log/slog"
	"os"

	"github.com/krypt0nn/ioserverlib"
)

// Option customizes a stdio channel.
type Option func(*config)

type config struct {
	r        io.Reader
	w        io.Writer
	l        *slog.Logger
	chanOpts []ioserverlib.Option
	srvOpts  []ioserverlib.ServerOption
}

func newConfig(opts []Option) config {
	cfg := config{
		r: struct{ io.Reader }{os.Stdin},
		w: struct{ io.Writer }{os.Stdout},
		l: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithIO sets the reader and writer for the channel.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(c *config) {
		if r != nil {
			c.r = r
		}
		if w != nil {
			c.w = w
		}
	}
}

// WithReader overrides the input stream.
func WithReader(r io.Reader) Option {
	return func(c *config) {
		if r != nil {
			c.r = r
		}
	}
}

// WithWriter overrides the output stream.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.w = w
		}
	}
}

// WithLogger overrides the logger. It must not write to stdout.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.l = l
		}
	}
}

// WithChannelOptions passes options through to the underlying channel.
func WithChannelOptions(opts ...ioserverlib.Option) Option {
	return func(c *config) {
		c.chanOpts = append(c.chanOpts, opts...)
	}
}

// WithServerOptions passes options through to the server built by Serve.
func WithServerOptions(opts ...ioserverlib.ServerOption) Option {
	return func(c *config) {
		c.srvOpts = append(c.srvOpts, opts...)
	}
}
