// Package api defines the crewchat RPC surface: procedure names, request
// and response messages, and connect handler constructors for each service.
//
// Messages are plain Go structs carried by a JSON codec. Empty responses use
// google.protobuf.Empty and are encoded with protojson.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ServicePrefix is the package prefix shared by every procedure.
const ServicePrefix = "/crewchat.v1."

type jsonCodec struct{}

// Codec returns the codec used by every crewchat handler and client.
// It replaces connect's built-in "json" codec.
func Codec() connect.Codec { return jsonCodec{} }

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid json message: %w", err)
	}
	return nil
}

// route registers one unary procedure on mux.
func route[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// NewClient builds a unary client for one procedure.
func NewClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opts...)
}
