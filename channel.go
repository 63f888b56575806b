package ioserverlib

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/krypt0nn/ioserverlib/codec"
	"github.com/krypt0nn/ioserverlib/internal/logctx"
)

// Delimiter terminates every frame on the wire.
const Delimiter = '\n'

const readBufferSize = 64 * 1024

// Channel reads and writes whole messages over one duplex byte stream. One
// goroutine owns it; Close is the only method that may be called from another
// goroutine, which is how a blocked Read is released.
type Channel[M any] struct {
	r     *bufio.Reader
	w     io.Writer
	codec codec.Codec[M]

	closers   []io.Closer
	closeOnce sync.Once
	closeErr  error

	maxFrameSize int
	peer         Peer
	l            *slog.Logger
	logCtx       context.Context
}

// New binds a duplex stream, such as a net.Conn, to a Channel. If rw is an
// io.Closer, Close closes it.
func New[M any](rw io.ReadWriter, c codec.Codec[M], opts ...Option) *Channel[M] {
	return newChannel(rw, rw, c, opts)
}

// NewSplit binds separate input and output halves to a Channel, as with a
// child's stdout and stdin pipes. Each half that is an io.Closer is closed by
// Close, the output half first.
func NewSplit[M any](r io.Reader, w io.Writer, c codec.Codec[M], opts ...Option) *Channel[M] {
	return newChannel(r, w, c, opts)
}

func newChannel[M any](r io.Reader, w io.Writer, c codec.Codec[M], opts []Option) *Channel[M] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var closers []io.Closer
	closers = appendCloser(closers, w)
	closers = appendCloser(closers, r)
	closers = append(closers, o.closers...)

	logCtx := logctx.WithChannelData(context.Background(), &logctx.ChannelData{
		Transport: o.peer.Transport,
		Addr:      o.peer.Addr,
		PID:       o.peer.PID,
	})

	return &Channel[M]{
		r:            bufio.NewReaderSize(r, readBufferSize),
		w:            w,
		codec:        c,
		closers:      closers,
		maxFrameSize: o.maxFrameSize,
		peer:         o.peer,
		l:            slog.New(logctx.Wrap(o.l.Handler())),
		logCtx:       logCtx,
	}
}

// Codec returns the channel's encoding contract.
func (ch *Channel[M]) Codec() codec.Codec[M] { return ch.codec }

// Peer returns the description of the remote end.
func (ch *Channel[M]) Peer() Peer { return ch.peer }

// Read blocks until a complete frame arrives and decodes it. Blank frames are
// skipped. A clean end of stream is reported as an *IOError wrapping io.EOF.
func (ch *Channel[M]) Read() (M, error) {
	for {
		m, ok, err := ch.TryRead()
		if err != nil || ok {
			return m, err
		}
	}
}

// TryRead reads exactly one frame. A blank frame yields ok == false and a nil
// error.
func (ch *Channel[M]) TryRead() (m M, ok bool, err error) {
	line, err := ch.readFrame()
	if err != nil {
		return m, false, err
	}

	payload := bytes.TrimSpace(line)
	if len(payload) == 0 {
		return m, false, nil
	}

	m, err = ch.codec.Decode(payload)
	if err != nil {
		var zero M
		ch.l.DebugContext(ch.logCtx, "frame decode failed", slog.Int("bytes", len(payload)), slog.String("err", err.Error()))
		return zero, false, &DecodeError{Frame: payload, Err: err}
	}
	ch.l.DebugContext(ch.logCtx, "frame read", slog.Int("bytes", len(payload)))
	return m, true, nil
}

// Write encodes m, appends the delimiter and writes the frame in one call,
// flushing the output if it buffers.
func (ch *Channel[M]) Write(m M) error {
	payload, err := ch.codec.Encode(m)
	if err != nil {
		return &EncodeError{Err: err}
	}
	if bytes.IndexByte(payload, Delimiter) >= 0 {
		return &EncodeError{Err: ErrDelimiterInPayload}
	}

	frame := make([]byte, 0, len(payload)+1)
	frame = append(frame, payload...)
	frame = append(frame, Delimiter)
	if _, err := ch.w.Write(frame); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	if f, ok := ch.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return &IOError{Op: "flush", Err: err}
		}
	}
	ch.l.DebugContext(ch.logCtx, "frame written", slog.Int("bytes", len(payload)))
	return nil
}

// Close releases the underlying stream. It is safe to call concurrently with
// Read or another Close; the stream is closed once and every call returns the
// same error.
func (ch *Channel[M]) Close() error {
	ch.closeOnce.Do(func() {
		var errs []error
		for _, c := range ch.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		ch.closeErr = errors.Join(errs...)
	})
	return ch.closeErr
}

// readFrame returns one delimited line including its delimiter. Oversized
// lines are consumed up to their delimiter and reported as decode errors so
// the next call starts on a frame boundary.
func (ch *Channel[M]) readFrame() ([]byte, error) {
	var (
		frame    []byte
		tooLarge bool
	)
	for {
		chunk, err := ch.r.ReadSlice(Delimiter)
		if !tooLarge {
			size := len(frame) + len(chunk)
			if err == nil {
				size--
			}
			if size > ch.maxFrameSize {
				tooLarge = true
				frame = nil
			} else {
				frame = append(frame, chunk...)
			}
		}

		switch {
		case err == nil:
			if tooLarge {
				return nil, &DecodeError{Err: ErrFrameTooLarge}
			}
			return frame, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !tooLarge && len(bytes.TrimSpace(frame)) == 0 {
				return nil, &IOError{Op: "read", Err: io.EOF}
			}
			return nil, &IOError{Op: "read", Err: io.ErrUnexpectedEOF}
		default:
			return nil, &IOError{Op: "read", Err: err}
		}
	}
}

// appendCloser adds v to cs when it is a closer not already present. Only
// pointer-shaped values are compared, since comparing arbitrary interface
// values can panic.
func appendCloser(cs []io.Closer, v any) []io.Closer {
	c, ok := v.(io.Closer)
	if !ok {
		return cs
	}
	for _, existing := range cs {
		if samePointer(existing, c) {
			return cs
		}
	}
	return append(cs, c)
}

func samePointer(a, b any) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta.Kind() != reflect.Pointer {
		return false
	}
	return a == b
}
