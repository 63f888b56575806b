package ioserverlib

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/krypt0nn/ioserverlib/codec"
	"github.com/stretchr/testify/require"
)

func TestChannel_WriteThenReadPreservesOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ch := New(&buf, codec.JSON[pingPong]{})

	require.NoError(t, ch.Write(ping))
	require.NoError(t, ch.Write(pong))
	require.Equal(t, "\"Ping\"\n\"Pong\"\n", buf.String())

	first, err := ch.Read()
	require.NoError(t, err)
	require.Equal(t, ping, first)

	second, err := ch.Read()
	require.NoError(t, err)
	require.Equal(t, pong, second)
}

func TestChannel_RoundTripStructs(t *testing.T) {
	t.Parallel()

	type note struct {
		Title string   `json:"title"`
		Lines []string `json:"lines"`
	}

	var buf bytes.Buffer
	ch := New(&buf, codec.JSON[note]{})
	in := []note{
		{Title: "a", Lines: []string{"one\ntwo"}},
		{Title: "b\r\n", Lines: nil},
	}
	for _, n := range in {
		require.NoError(t, ch.Write(n))
	}
	require.Equal(t, len(in), strings.Count(buf.String(), "\n"))

	for _, want := range in {
		got, err := ch.Read()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestChannel_ReadEndOfStream(t *testing.T) {
	t.Parallel()

	ch := NewSplit(strings.NewReader(""), io.Discard, codec.JSON[pingPong]{})
	_, err := ch.Read()
	require.True(t, IsEndOfStream(err))
	require.ErrorIs(t, err, io.EOF)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	require.Equal(t, "read", ioErr.Op)
}

func TestChannel_ReadTrailingWhitespaceIsEndOfStream(t *testing.T) {
	t.Parallel()

	ch := NewSplit(strings.NewReader("\"Ping\"\n  \r"), io.Discard, codec.JSON[pingPong]{})
	got, err := ch.Read()
	require.NoError(t, err)
	require.Equal(t, ping, got)

	_, err = ch.Read()
	require.True(t, IsEndOfStream(err))
}

func TestChannel_ReadPartialFrame(t *testing.T) {
	t.Parallel()

	ch := NewSplit(strings.NewReader(`"Ping"`), io.Discard, codec.JSON[pingPong]{})
	_, err := ch.Read()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.False(t, IsEndOfStream(err))
}

func TestChannel_ReadStreamError(t *testing.T) {
	t.Parallel()

	ch := NewSplit(failingReader{}, io.Discard, codec.JSON[pingPong]{})
	_, err := ch.Read()
	require.ErrorIs(t, err, errBoom)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestChannel_DecodeErrorKeepsChannelUsable(t *testing.T) {
	t.Parallel()

	ch := NewSplit(strings.NewReader("{not json\n\"Ping\"\n"), io.Discard, codec.JSON[pingPong]{})

	_, err := ch.Read()
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, []byte("{not json"), decErr.Frame)
	require.False(t, IsEndOfStream(err))

	got, err := ch.Read()
	require.NoError(t, err)
	require.Equal(t, ping, got)
}

func TestChannel_UnknownVariantIsDecodeError(t *testing.T) {
	t.Parallel()

	ch := NewSplit(strings.NewReader("\"Pang\"\n"), io.Discard, codec.JSON[pingPong]{})
	_, err := ch.Read()
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestChannel_BlankFrames(t *testing.T) {
	t.Parallel()

	ch := NewSplit(strings.NewReader("\n  \r\n\"Pong\"\r\n"), io.Discard, codec.JSON[pingPong]{})

	_, ok, err := ch.TryRead()
	require.NoError(t, err)
	require.False(t, ok)

	got, err := ch.Read()
	require.NoError(t, err)
	require.Equal(t, pong, got)
}

func TestChannel_FrameTooLarge(t *testing.T) {
	t.Parallel()

	huge := strings.Repeat("x", 3*readBufferSize)
	input := "\"0123456789\"\n" + huge + "\n\"Ping\"\n"
	ch := NewSplit(strings.NewReader(input), io.Discard, codec.JSON[pingPong]{}, WithMaxFrameSize(6))

	for i := 0; i < 2; i++ {
		_, err := ch.Read()
		require.ErrorIs(t, err, ErrFrameTooLarge)
		var decErr *DecodeError
		require.ErrorAs(t, err, &decErr)
	}

	got, err := ch.Read()
	require.NoError(t, err, "a frame of exactly the maximum size is accepted")
	require.Equal(t, ping, got)
}

func TestChannel_WriteRejectsDelimiterInPayload(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	raw := codec.Func[string]{
		EncodeFunc: func(s string) ([]byte, error) { return []byte(s), nil },
		DecodeFunc: func(b []byte) (string, error) { return string(b), nil },
	}
	ch := New(&buf, raw)

	err := ch.Write("two\nlines")
	require.ErrorIs(t, err, ErrDelimiterInPayload)
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	require.Zero(t, buf.Len(), "nothing is written for a rejected payload")
}

func TestChannel_WriteEncodeError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ch := New(&buf, codec.JSON[any]{})

	err := ch.Write(func() {})
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	require.Zero(t, buf.Len())
}

func TestChannel_WriteStreamError(t *testing.T) {
	t.Parallel()

	ch := NewSplit(strings.NewReader(""), failingWriter{}, codec.JSON[pingPong]{})
	err := ch.Write(ping)
	require.ErrorIs(t, err, errBoom)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	require.Equal(t, "write", ioErr.Op)
}

func TestChannel_WriteFlushesBufferedOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	ch := NewSplit(strings.NewReader(""), bw, codec.JSON[pingPong]{})

	require.NoError(t, ch.Write(pong))
	require.Equal(t, "\"Pong\"\n", buf.String())
}

func TestChannel_CloseDuplexOnce(t *testing.T) {
	t.Parallel()

	var closed []string
	rw := &closeRecorder{name: "conn", log: &closed, Reader: strings.NewReader(""), Writer: io.Discard}
	ch := New(rw, codec.JSON[pingPong]{})

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())
	require.Equal(t, []string{"conn"}, closed)
}

func TestChannel_CloseSplitWriterFirst(t *testing.T) {
	t.Parallel()

	var closed []string
	r := &closeRecorder{name: "stdout", log: &closed, Reader: strings.NewReader("")}
	w := &closeRecorder{name: "stdin", log: &closed, Writer: io.Discard}
	extra := &closeRecorder{name: "extra", log: &closed}
	ch := NewSplit(r, w, codec.JSON[pingPong]{}, WithCloser(extra))

	require.NoError(t, ch.Close())
	require.Equal(t, []string{"stdin", "stdout", "extra"}, closed)
}

func TestChannel_CloseReportsErrors(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	ch := NewSplit(pr, pw, codec.JSON[pingPong]{}, WithCloser(closerFunc(func() error { return errBoom })))

	err := ch.Close()
	require.True(t, errors.Is(err, errBoom))
}

func TestChannel_CloseFromSeveralGoroutines(t *testing.T) {
	t.Parallel()

	a, b := net.Pipe()
	defer b.Close()
	ch := New(a, codec.JSON[pingPong]{})

	var (
		wg   sync.WaitGroup
		errs = make([]error, 4)
	)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = ch.Close()
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	_, err := b.Write([]byte("x"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestChannel_CloseReleasesBlockedRead(t *testing.T) {
	t.Parallel()

	a, b := net.Pipe()
	defer b.Close()
	ch := New(a, codec.JSON[pingPong]{})

	done := make(chan error, 1)
	go func() {
		_, err := ch.Read()
		done <- err
	}()

	require.NoError(t, ch.Close())
	var ioErr *IOError
	require.ErrorAs(t, <-done, &ioErr)
}

func TestChannel_CloseReturnsSameErrorEveryTime(t *testing.T) {
	t.Parallel()

	calls := 0
	ch := NewSplit(strings.NewReader(""), io.Discard, codec.JSON[pingPong]{}, WithCloser(closerFunc(func() error {
		calls++
		return errBoom
	})))

	require.ErrorIs(t, ch.Close(), errBoom)
	require.ErrorIs(t, ch.Close(), errBoom)
	require.Equal(t, 1, calls)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
