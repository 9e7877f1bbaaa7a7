package codec

import "encoding/json"

// JSON is the default codec. Its output embeds directly into the persisted
// entry envelope, which keeps stored data interoperable with previously
// persisted entries.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
