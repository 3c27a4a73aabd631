package netsim

import (
	"encoding/json"
	"io"
)

// JSONCodec is the default Codec, matching the wire format the teacher's
// internal/net/proto and logging/sinks/json.go both use throughout.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// Decode implements Codec.
func (JSONCodec) Decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
