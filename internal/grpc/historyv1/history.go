// Package historyv1 declares the camwatch.history.v1.HistoryEngine gRPC service.
// Requests and responses travel as google.protobuf.Struct so the service needs no
// generated message types; the field layout is documented on each method.
package historyv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "camwatch.history.v1.HistoryEngine"

	AnalyzeFullMethodName = "/" + ServiceName + "/Analyze"
	TodayFullMethodName   = "/" + ServiceName + "/Today"
)

// HistoryEngineServer is the server API for the HistoryEngine service.
type HistoryEngineServer interface {
	// Analyze takes {"folder", "start", "end"} with optional YYYY-MM-DD bounds and
	// returns the full analysis result.
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Today takes {"folder"} and analyses the current calendar day.
	Today(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedHistoryEngineServer can be embedded for forward compatibility.
type UnimplementedHistoryEngineServer struct{}

func (UnimplementedHistoryEngineServer) Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Analyze not implemented")
}

func (UnimplementedHistoryEngineServer) Today(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Today not implemented")
}

// RegisterHistoryEngineServer attaches srv to s.
func RegisterHistoryEngineServer(s grpc.ServiceRegistrar, srv HistoryEngineServer) {
	s.RegisterService(&HistoryEngine_ServiceDesc, srv)
}

func _HistoryEngine_Analyze_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HistoryEngineServer).Analyze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AnalyzeFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HistoryEngineServer).Analyze(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _HistoryEngine_Today_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HistoryEngineServer).Today(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TodayFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(HistoryEngineServer).Today(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// HistoryEngine_ServiceDesc is the grpc.ServiceDesc for the HistoryEngine service.
var HistoryEngine_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: _HistoryEngine_Analyze_Handler},
		{MethodName: "Today", Handler: _HistoryEngine_Today_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "camwatch/history/v1/history.proto",
}

// HistoryEngineClient is the client API for the HistoryEngine service.
type HistoryEngineClient interface {
	Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Today(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type historyEngineClient struct {
	cc grpc.ClientConnInterface
}

// NewHistoryEngineClient wraps a client connection.
func NewHistoryEngineClient(cc grpc.ClientConnInterface) HistoryEngineClient {
	return &historyEngineClient{cc: cc}
}

func (c *historyEngineClient) Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AnalyzeFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *historyEngineClient) Today(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TodayFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
