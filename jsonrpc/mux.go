package jsonrpc

import (
	"encoding/json"
	"errors"
	"log/slog"
)

// MethodHandler answers one request. A returned *Error is sent as is; any
// other error becomes an internal error response.
type MethodHandler func(params json.RawMessage) (result any, err error)

// NotificationHandler consumes one notification.
type NotificationHandler func(params json.RawMessage)

// MuxOption customizes a Mux.
type MuxOption func(*Mux)

// WithMuxLogger sets the logger used for unroutable messages and handler failures.
func WithMuxLogger(l *slog.Logger) MuxOption {
	return func(m *Mux) {
		if l != nil {
			m.l = l
		}
	}
}

// Mux routes requests and notifications by method name. Register handlers
// before serving; the Mux is not safe for concurrent registration.
type Mux struct {
	methods       map[string]MethodHandler
	notifications map[string]NotificationHandler
	l             *slog.Logger
}

// NewMux returns an empty Mux.
func NewMux(opts ...MuxOption) *Mux {
	m := &Mux{
		methods:       make(map[string]MethodHandler),
		notifications: make(map[string]NotificationHandler),
		l:             slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleMethod registers h for requests named method.
func (m *Mux) HandleMethod(method string, h MethodHandler) {
	m.methods[method] = h
}

// HandleNotification registers h for notifications named method.
func (m *Mux) HandleNotification(method string, h NotificationHandler) {
	m.notifications[method] = h
}

// Handle is an ioserverlib.Handler[Message]. Requests always get a response;
// notifications and stray responses never do.
func (m *Mux) Handle(msg Message) (Message, bool) {
	switch msg.Type() {
	case TypeNotification:
		if h, ok := m.notifications[msg.Method]; ok {
			h(msg.Params)
		} else {
			m.l.Debug("unhandled notification", slog.String("method", msg.Method))
		}
		return Message{}, false
	case TypeResponse:
		m.l.Debug("ignoring response", slog.String("id", msg.ID.String()))
		return Message{}, false
	}

	h, ok := m.methods[msg.Method]
	if !ok {
		return NewErrorResponse(msg.ID, ErrorCodeMethodNotFound, "method not found: "+msg.Method, nil), true
	}

	result, err := h(msg.Params)
	if err != nil {
		var rpcErr *Error
		if errors.As(err, &rpcErr) {
			return Message{JSONRPCVersion: ProtocolVersion, Error: rpcErr, ID: msg.ID}, true
		}
		m.l.Warn("method failed", slog.String("method", msg.Method), slog.String("err", err.Error()))
		return NewErrorResponse(msg.ID, ErrorCodeInternalError, err.Error(), nil), true
	}

	resp, err := NewResultResponse(msg.ID, result)
	if err != nil {
		return NewErrorResponse(msg.ID, ErrorCodeInternalError, err.Error(), nil), true
	}
	return resp, true
}

// Params decodes params into v, reporting failures as ErrorCodeInvalidParams.
func Params(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return NewError(ErrorCodeInvalidParams, "missing params", nil)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return NewError(ErrorCodeInvalidParams, err.Error(), nil)
	}
	return nil
}
