package server

import (
	"connectrpc.com/connect"
	"github.com/goccy/go-json"
)

// jsonCodec encodes plain Go structs, so the service needs no generated protobuf types.
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// WithJSON registers the JSON codec on a handler or a client.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
