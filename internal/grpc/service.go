package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName      = "infrasight.collective.v1.Collective"
	contributeMethod = "/" + serviceName + "/Contribute"
)

// contributeRequest carries one rank's part of collective round Seq. A
// barrier is a round with empty arrays.
type contributeRequest struct {
	Seq    uint64    `cbor:"1,keyasint"`
	Rank   int       `cbor:"2,keyasint"`
	Root   int       `cbor:"3,keyasint"`
	Ints   []int64   `cbor:"4,keyasint,omitempty"`
	Floats []float64 `cbor:"5,keyasint,omitempty"`
}

// contributeReply holds the round totals, only for the reduce root.
type contributeReply struct {
	Ints   []int64   `cbor:"1,keyasint,omitempty"`
	Floats []float64 `cbor:"2,keyasint,omitempty"`
}

type collectiveServer interface {
	contribute(ctx context.Context, req *contributeRequest) (*contributeReply, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*collectiveServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Contribute", Handler: contributeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "collective",
}

func contributeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(contributeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	s := srv.(collectiveServer)
	if interceptor == nil {
		return s.contribute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: contributeMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return s.contribute(ctx, req.(*contributeRequest))
	})
}
