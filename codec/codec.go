package codec

// Codec encodes and decodes a single message type. Implementations must be
// stateless and safe to share; a channel never mutates its codec.
type Codec[M any] interface {
	// Encode serializes m into one frame payload. The payload must not
	// contain the '\n' delimiter.
	Encode(m M) ([]byte, error)

	// Decode parses one frame payload, delimiter already stripped.
	Decode(payload []byte) (M, error)
}

// Func adapts a pair of plain functions to the Codec interface.
type Func[M any] struct {
	EncodeFunc func(M) ([]byte, error)
	DecodeFunc func([]byte) (M, error)
}

func (f Func[M]) Encode(m M) ([]byte, error)       { return f.EncodeFunc(m) }
func (f Func[M]) Decode(payload []byte) (M, error) { return f.DecodeFunc(payload) }
