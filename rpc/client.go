package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
)

// GRPCClient calls the note service over gRPC.
type GRPCClient struct {
	conn *grpc.ClientConn
}

// Dial creates a client for addr. The connection is established lazily on
// the first call.
func Dial(addr string, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
		grpc.WithUnaryInterceptor(AppIDInterceptor(DefaultAppID)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}
	return &GRPCClient{conn: conn}, nil
}

// Close releases the connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) LogIn(ctx context.Context, req *LogInRequest) (*LogInResponse, error) {
	out := new(LogInResponse)
	if err := c.conn.Invoke(ctx, methodLogIn, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) RegisterUser(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	out := new(RegisterResponse)
	if err := c.conn.Invoke(ctx, methodRegister, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	out := new(ListTasksResponse)
	if err := c.conn.Invoke(ctx, methodList, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) GetTask(ctx context.Context, req *GetTaskRequest) (*GetTaskResponse, error) {
	out := new(GetTaskResponse)
	if err := c.conn.Invoke(ctx, methodGet, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) CreateTask(ctx context.Context, req *CreateTaskRequest) (*CreateTaskResponse, error) {
	out := new(CreateTaskResponse)
	if err := c.conn.Invoke(ctx, methodCreate, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) UpdateTask(ctx context.Context, req *UpdateTaskRequest) error {
	return c.conn.Invoke(ctx, methodUpdate, req, new(emptypb.Empty))
}

func (c *GRPCClient) DeleteTask(ctx context.Context, req *DeleteTaskRequest) error {
	return c.conn.Invoke(ctx, methodDelete, req, new(emptypb.Empty))
}
