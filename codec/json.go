package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrTrailingData is returned by a strict JSON codec when a payload holds more
// than one JSON value.
var ErrTrailingData = errors.New("codec: trailing data after JSON value")

// JSON is the reference codec: one compact JSON document per frame.
// encoding/json escapes control characters inside strings and compacts the
// output of custom marshalers, so payloads never contain a raw newline.
type JSON[M any] struct {
	// Strict rejects unknown object fields when decoding.
	Strict bool
}

func (JSON[M]) Encode(m M) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return b, nil
}

func (c JSON[M]) Decode(payload []byte) (M, error) {
	var m M
	if !c.Strict {
		if err := json.Unmarshal(payload, &m); err != nil {
			var zero M
			return zero, fmt.Errorf("json decode: %w", err)
		}
		return m, nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var zero M
		return zero, fmt.Errorf("json decode: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		var zero M
		return zero, ErrTrailingData
	}
	return m, nil
}
