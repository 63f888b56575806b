// Package msgpack provides a MessagePack codec for ioserverlib channels.
//
// MessagePack output is binary and may contain the newline byte, so every
// payload is armored with standard base64 before it is framed.
package msgpack

import (
	"encoding/base64"
	"fmt"

	ugcodec "github.com/ugorji/go/codec"
)

var handle = newHandle()

func newHandle() *ugcodec.MsgpackHandle {
	h := &ugcodec.MsgpackHandle{}
	h.WriteExt = true
	h.RawToString = true
	return h
}

// Codec encodes messages of type M as base64 armored MessagePack.
type Codec[M any] struct{}

func (Codec[M]) Encode(m M) ([]byte, error) {
	var raw []byte
	if err := ugcodec.NewEncoderBytes(&raw, handle).Encode(m); err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

func (Codec[M]) Decode(payload []byte) (M, error) {
	var m M
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(payload)))
	n, err := base64.StdEncoding.Decode(raw, payload)
	if err != nil {
		return m, fmt.Errorf("msgpack armor: %w", err)
	}
	if err := ugcodec.NewDecoderBytes(raw[:n], handle).Decode(&m); err != nil {
		var zero M
		return zero, fmt.Errorf("msgpack decode: %w", err)
	}
	return m, nil
}
