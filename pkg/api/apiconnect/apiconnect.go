// Package apiconnect wires the splitclaim.v1 services to Connect.
//
// This package is maintained by hand, not generated. The messages in package
// api are plain structs with no protobuf descriptors, so every handler and
// client here installs api.Codec. It registers as "json" in place of
// Connect's protojson codec. Adding a procedure means adding its constant,
// its interface method, and its case in the handler switch.
package apiconnect

import (
	"connectrpc.com/connect"

	"github.com/mmynk/splitclaim/pkg/api"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}
