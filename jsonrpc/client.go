package jsonrpc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/krypt0nn/ioserverlib"
)

// ErrUnexpectedRequest is returned by Call when the peer sends a request
// while a call is outstanding; this client does not serve requests.
var ErrUnexpectedRequest = errors.New("jsonrpc: unexpected request from peer")

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger used for dropped messages.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// WithNotificationHandler receives notifications that arrive while a call
// is waiting for its response.
func WithNotificationHandler(h func(Message)) ClientOption {
	return func(c *Client) {
		c.onNotification = h
	}
}

// Client issues calls over a channel one at a time. It reads the channel
// only while a call is outstanding and is not safe for concurrent use.
type Client struct {
	ch             *ioserverlib.Channel[Message]
	l              *slog.Logger
	onNotification func(Message)
}

// NewClient wraps ch. The client does not own ch; the caller closes it.
func NewClient(ch *ioserverlib.Channel[Message], opts ...ClientOption) *Client {
	c := &Client{ch: ch, l: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call sends a request and blocks until the response with the same id
// arrives. The result is decoded into result when it is non-nil. A JSON-RPC
// error response is returned as *Error.
func (c *Client) Call(method string, params, result any) error {
	id := NewRandomRequestID()
	req, err := NewRequest(id, method, params)
	if err != nil {
		return err
	}
	if err := c.ch.Write(req); err != nil {
		return fmt.Errorf("send %s: %w", method, err)
	}

	for {
		msg, err := c.ch.Read()
		if err != nil {
			return fmt.Errorf("await %s: %w", method, err)
		}

		switch msg.Type() {
		case TypeNotification:
			if c.onNotification != nil {
				c.onNotification(msg)
			}
			continue
		case TypeRequest:
			return ErrUnexpectedRequest
		}

		if msg.ID.String() != id.String() {
			c.l.Debug("dropping unmatched response", slog.String("id", msg.ID.String()))
			continue
		}
		return msg.DecodeResult(result)
	}
}

// Notify sends a notification. No response is expected.
func (c *Client) Notify(method string, params any) error {
	n, err := NewNotification(method, params)
	if err != nil {
		return err
	}
	if err := c.ch.Write(n); err != nil {
		return fmt.Errorf("notify %s: %w", method, err)
	}
	return nil
}
