package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the accounts service.
const ServiceName = "shopaccounts.Accounts"

// Full method names, as seen by interceptors.
const (
	MethodCreate      = "/" + ServiceName + "/Create"
	MethodDelete      = "/" + ServiceName + "/Delete"
	MethodModify      = "/" + ServiceName + "/Modify"
	MethodFindAll     = "/" + ServiceName + "/FindAll"
	MethodFind        = "/" + ServiceName + "/Find"
	MethodCount       = "/" + ServiceName + "/Count"
	MethodFindCurrent = "/" + ServiceName + "/FindCurrent"
)

// AccountsServer is the server API of the accounts service. Accounts travel
// as JSON-shaped structs; ids and counts as Int64Value.
type AccountsServer interface {
	Create(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *wrapperspb.Int64Value) (*emptypb.Empty, error)
	Modify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindAll(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	Find(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	Count(context.Context, *structpb.Struct) (*wrapperspb.Int64Value, error)
	FindCurrent(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func unaryHandler[Req proto.Message, Resp any](fullMethod string, newReq func() Req,
	call func(AccountsServer, context.Context, Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			out, err := call(srv.(AccountsServer), ctx, in)
			return out, err
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			out, err := call(srv.(AccountsServer), ctx, req.(Req))
			return out, err
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newStruct() *structpb.Struct      { return &structpb.Struct{} }
func newInt64() *wrapperspb.Int64Value { return &wrapperspb.Int64Value{} }
func newEmpty() *emptypb.Empty         { return &emptypb.Empty{} }

// AccountsServiceDesc describes the accounts service for grpc.ServiceRegistrar.
var AccountsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccountsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Create", Handler: unaryHandler(MethodCreate, newStruct, AccountsServer.Create)},
		{MethodName: "Delete", Handler: unaryHandler(MethodDelete, newInt64, AccountsServer.Delete)},
		{MethodName: "Modify", Handler: unaryHandler(MethodModify, newStruct, AccountsServer.Modify)},
		{MethodName: "FindAll", Handler: unaryHandler(MethodFindAll, newStruct, AccountsServer.FindAll)},
		{MethodName: "Find", Handler: unaryHandler(MethodFind, newInt64, AccountsServer.Find)},
		{MethodName: "Count", Handler: unaryHandler(MethodCount, newStruct, AccountsServer.Count)},
		{MethodName: "FindCurrent", Handler: unaryHandler(MethodFindCurrent, newEmpty, AccountsServer.FindCurrent)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shopaccounts/accounts",
}

func RegisterAccountsServer(s grpc.ServiceRegistrar, srv AccountsServer) {
	s.RegisterService(&AccountsServiceDesc, srv)
}

// AccountsClient calls the accounts service over a client connection.
type AccountsClient struct {
	cc grpc.ClientConnInterface
}

func NewAccountsClient(cc grpc.ClientConnInterface) *AccountsClient {
	return &AccountsClient{cc: cc}
}

func (c *AccountsClient) Create(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodCreate, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountsClient) Delete(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodDelete, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountsClient) Modify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodModify, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountsClient) FindAll(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, MethodFindAll, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountsClient) Find(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodFind, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountsClient) Count(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.Int64Value, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, MethodCount, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AccountsClient) FindCurrent(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodFindCurrent, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
