package ioserverlib

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type pingPong string

const (
	ping pingPong = "Ping"
	pong pingPong = "Pong"
)

func (p *pingPong) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch v := pingPong(s); v {
	case ping, pong:
		*p = v
		return nil
	}
	return fmt.Errorf("unknown variant %q", s)
}

func pingHandler(m pingPong) (pingPong, bool) {
	if m == ping {
		return pong, true
	}
	return "", false
}

var errBoom = errors.New("boom")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errBoom }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errBoom }

// closeRecorder is a closable stream that records close order.
type closeRecorder struct {
	name string
	log  *[]string
	io.Reader
	io.Writer
}

func (c *closeRecorder) Close() error {
	*c.log = append(*c.log, c.name)
	return nil
}
