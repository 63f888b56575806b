package ioserverlib

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrFrameTooLarge indicates a frame exceeded the channel's maximum size.
	// The oversized frame is discarded up to its delimiter.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrDelimiterInPayload indicates a codec produced a payload containing
	// the frame delimiter.
	ErrDelimiterInPayload = errors.New("encoded payload contains frame delimiter")
	// ErrMissingPipe indicates a spawned child's stdio pipe was not available.
	ErrMissingPipe = errors.New("spawned process pipe is missing")
)

// DecodeError reports a frame whose payload could not be parsed. The channel
// stays usable: the next read starts at the following frame.
type DecodeError struct {
	Frame []byte
	Err   error
}

func (e *DecodeError) Error() string { return "decode: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a message that could not be serialized. Nothing was
// written to the stream.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return "encode: " + e.Err.Error() }
func (e *EncodeError) Unwrap() error { return e.Err }

// IOError reports a failure of the underlying stream. A clean end of stream
// on read is an IOError wrapping io.EOF.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// SpawnError reports a child process that could not be started or wired.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string { return fmt.Sprintf("spawn %s: %v", e.Path, e.Err) }
func (e *SpawnError) Unwrap() error { return e.Err }

// IsEndOfStream reports whether err is the clean end-of-stream condition
// returned by Channel.Read when the peer closed its side between frames.
func IsEndOfStream(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr) && errors.Is(ioErr.Err, io.EOF)
}
