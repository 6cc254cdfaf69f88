package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

// jsonCodec carries the plain message structs in messages.go over gRPC.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// Codec returns the codec clients must use, for example with
// grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec())).
func Codec() encoding.Codec {
	return jsonCodec{}
}
