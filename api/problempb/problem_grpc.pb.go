// Package problempb: gRPC client/server contract for the problem
// catalog's GetProblem RPC. Shaped like protoc-gen-go-grpc output, but
// hand-maintained: GetProblem forces the JSON codec in codec.go onto
// every call instead of the default binary protobuf codec, which these
// plain Go structs were never built to drive.
package problempb

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
)

const (
	ProblemService_GetProblem_FullMethodName = "/problem.v1.ProblemService/GetProblem"
)

// ProblemServiceClient is the client contract for the problem catalog
// this evaluation core depends on, but does not own.
type ProblemServiceClient interface {
	GetProblem(ctx context.Context, in *GetProblemRequest, opts ...grpc.CallOption) (*GetProblemResponse, error)
}

type problemServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewProblemServiceClient wraps an established connection.
func NewProblemServiceClient(cc grpc.ClientConnInterface) ProblemServiceClient {
	return &problemServiceClient{cc: cc}
}

func (c *problemServiceClient) GetProblem(ctx context.Context, in *GetProblemRequest, opts ...grpc.CallOption) (*GetProblemResponse, error) {
	out := new(GetProblemResponse)
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, ProblemService_GetProblem_FullMethodName, in, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ProblemServiceServer is the server contract; unimplemented here since
// the catalog itself is out of scope for this repository.
type ProblemServiceServer interface {
	GetProblem(context.Context, *GetProblemRequest) (*GetProblemResponse, error)
}

// UnimplementedProblemServiceServer embeds into a real implementation to
// satisfy forward compatibility the way protoc-gen-go-grpc requires.
type UnimplementedProblemServiceServer struct{}

func (UnimplementedProblemServiceServer) GetProblem(context.Context, *GetProblemRequest) (*GetProblemResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetProblem not implemented")
}
