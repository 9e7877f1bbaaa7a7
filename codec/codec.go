// Package codec defines payload serialization for cached values.
//
// The cache never inspects payload contents; it only asks a codec for the
// encoded form, which doubles as the payload's size estimate.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
