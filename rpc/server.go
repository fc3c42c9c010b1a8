package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const serviceName = "note_v1.NoteV1"

const (
	methodLogIn    = "/" + serviceName + "/LogInPerson"
	methodRegister = "/" + serviceName + "/CreatePerson"
	methodList     = "/" + serviceName + "/List"
	methodGet      = "/" + serviceName + "/Get"
	methodCreate   = "/" + serviceName + "/Create"
	methodUpdate   = "/" + serviceName + "/Update"
	methodDelete   = "/" + serviceName + "/Delete"
)

// ServiceDesc describes the note service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Service)(nil),
	Methods: []grpc.MethodDesc{
		unary("LogInPerson", Service.LogIn),
		unary("CreatePerson", Service.RegisterUser),
		unary("List", Service.ListTasks),
		unary("Get", Service.GetTask),
		unary("Create", Service.CreateTask),
		unary("Update", noContent(Service.UpdateTask)),
		unary("Delete", noContent(Service.DeleteTask)),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "note_v1/note.proto",
}

// Register exposes svc on s.
func Register(s *grpc.Server, svc Service) {
	s.RegisterService(&ServiceDesc, svc)
}

func unary[Req, Resp any](name string, call func(Service, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			svc := srv.(Service)
			if interceptor == nil {
				return call(svc, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + serviceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(svc, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func noContent[Req any](call func(Service, context.Context, *Req) error) func(Service, context.Context, *Req) (*emptypb.Empty, error) {
	return func(svc Service, ctx context.Context, req *Req) (*emptypb.Empty, error) {
		if err := call(svc, ctx, req); err != nil {
			return nil, err
		}
		return &emptypb.Empty{}, nil
	}
}
