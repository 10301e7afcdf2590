// Package proto holds the ProfileService gRPC contract. Requests and
// responses are protobuf well-known types, so no generated message code is
// needed; the service descriptor below is registered by hand.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "edu.progress.ProfileService"

const (
	ProfileService_CreateProfile_FullMethodName     = "/" + ServiceName + "/CreateProfile"
	ProfileService_GetProfile_FullMethodName        = "/" + ServiceName + "/GetProfile"
	ProfileService_AddXP_FullMethodName             = "/" + ServiceName + "/AddXP"
	ProfileService_UnlockAchievement_FullMethodName = "/" + ServiceName + "/UnlockAchievement"
	ProfileService_GetSummary_FullMethodName        = "/" + ServiceName + "/GetSummary"
)

// ProfileServiceServer is implemented by the profile RPC usecase.
//
//	CreateProfile     {name, age}   -> code
//	GetProfile        code          -> profile document
//	AddXP             {code, amount} -> profile document
//	UnlockAchievement {code, id}    -> empty
//	GetSummary        {code, key}   -> progress summary
type ProfileServiceServer interface {
	CreateProfile(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	GetProfile(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	AddXP(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UnlockAchievement(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedProfileServiceServer()
}

type UnimplementedProfileServiceServer struct{}

func (UnimplementedProfileServiceServer) CreateProfile(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateProfile not implemented")
}
func (UnimplementedProfileServiceServer) GetProfile(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetProfile not implemented")
}
func (UnimplementedProfileServiceServer) AddXP(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AddXP not implemented")
}
func (UnimplementedProfileServiceServer) UnlockAchievement(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UnlockAchievement not implemented")
}
func (UnimplementedProfileServiceServer) GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSummary not implemented")
}
func (UnimplementedProfileServiceServer) mustEmbedUnimplementedProfileServiceServer() {}

func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ProfileService_ServiceDesc, srv)
}

// unary builds a method handler decoding into a fresh In.
func unary[In any, Out any](fullMethod string, call func(ProfileServiceServer, context.Context, *In) (Out, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(In)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ProfileServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ProfileServiceServer), ctx, req.(*In))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ProfileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateProfile",
			Handler:    unary(ProfileService_CreateProfile_FullMethodName, ProfileServiceServer.CreateProfile),
		},
		{
			MethodName: "GetProfile",
			Handler:    unary(ProfileService_GetProfile_FullMethodName, ProfileServiceServer.GetProfile),
		},
		{
			MethodName: "AddXP",
			Handler:    unary(ProfileService_AddXP_FullMethodName, ProfileServiceServer.AddXP),
		},
		{
			MethodName: "UnlockAchievement",
			Handler:    unary(ProfileService_UnlockAchievement_FullMethodName, ProfileServiceServer.UnlockAchievement),
		},
		{
			MethodName: "GetSummary",
			Handler:    unary(ProfileService_GetSummary_FullMethodName, ProfileServiceServer.GetSummary),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "edu_progress/profile",
}

type ProfileServiceClient interface {
	CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	GetProfile(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	AddXP(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UnlockAchievement(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc}
}

func (c *profileServiceClient) CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, ProfileService_CreateProfile_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) GetProfile(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProfileService_GetProfile_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) AddXP(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProfileService_AddXP_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) UnlockAchievement(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, ProfileService_UnlockAchievement_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) GetSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ProfileService_GetSummary_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
