package jsonrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_UnmarshalValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		typ     string
		wantErr bool
	}{
		{name: "request", raw: `{"jsonrpc":"2.0","method":"m","id":1}`, typ: TypeRequest},
		{name: "notification", raw: `{"jsonrpc":"2.0","method":"m","params":[1]}`, typ: TypeNotification},
		{name: "result", raw: `{"jsonrpc":"2.0","result":null,"id":"a"}`, typ: TypeResponse},
		{name: "error", raw: `{"jsonrpc":"2.0","error":{"code":-32601,"message":"x"},"id":2}`, typ: TypeResponse},
		{name: "wrong version", raw: `{"jsonrpc":"1.0","method":"m"}`, wantErr: true},
		{name: "request with result", raw: `{"jsonrpc":"2.0","method":"m","result":1}`, wantErr: true},
		{name: "both result and error", raw: `{"jsonrpc":"2.0","result":1,"error":{"code":1,"message":"x"}}`, wantErr: true},
		{name: "empty response", raw: `{"jsonrpc":"2.0","id":3}`, wantErr: true},
		{name: "bad id", raw: `{"jsonrpc":"2.0","method":"m","id":{}}`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m Message
			err := json.Unmarshal([]byte(tc.raw), &m)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.typ, m.Type())
		})
	}
}

func TestMessage_CodecRoundTrip(t *testing.T) {
	t.Parallel()

	c := Codec()
	req, err := NewRequest(NewRequestID(7), "sum", []int{1, 2})
	require.NoError(t, err)

	b, err := c.Encode(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","method":"sum","params":[1,2],"id":7}`, string(b))

	got, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, "sum", got.Method)
	require.Equal(t, "7", got.ID.String())
	require.Equal(t, int64(7), got.ID.Value())
}

func TestMessage_DecodeResult(t *testing.T) {
	t.Parallel()

	ok, err := NewResultResponse(NewRequestID("x"), map[string]int{"n": 3})
	require.NoError(t, err)
	var out struct{ N int }
	require.NoError(t, ok.DecodeResult(&out))
	require.Equal(t, 3, out.N)

	failed := NewErrorResponse(NewRequestID("x"), ErrorCodeInvalidParams, "bad", nil)
	err = failed.DecodeResult(&out)
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, ErrorCodeInvalidParams, rpcErr.Code)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	require.True(t, (*RequestID)(nil).IsNil())
	require.True(t, NewRequestID(struct{}{}).IsNil())
	require.Equal(t, "", (*RequestID)(nil).String())

	b, err := json.Marshal(NewRequestID(nil))
	require.NoError(t, err)
	require.Equal(t, "null", string(b))

	var id RequestID
	require.NoError(t, json.Unmarshal([]byte(`1.5`), &id))
	require.Equal(t, 1.5, id.Value())
	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &id))
	require.Equal(t, "abc", id.String())

	a, b2 := NewRandomRequestID(), NewRandomRequestID()
	require.NotEqual(t, a.String(), b2.String())
	require.Len(t, a.String(), 36)
}
