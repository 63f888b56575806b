// Package codec defines the encoding contract used by ioserverlib channels.
//
// A Codec turns exactly one message value into one frame payload and back.
// The channel owns framing: it appends the newline delimiter after every
// encoded payload and strips it (along with surrounding whitespace) before
// handing a payload to Decode. Encoded payloads therefore must never contain
// a raw '\n' byte; channels reject such payloads with an encode error.
//
// JSON is the ready-made contract. Applications only pick the message type:
//
//	ch := ioserverlib.New(conn, codec.JSON[MyMessage]{})
//
// Any other textual or armored binary encoding can be substituted by
// implementing Codec (see the msgpack subpackage) or by wrapping two plain
// functions with Func.
package codec
