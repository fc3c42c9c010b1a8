// Package rpc is the task/auth service capability: wire types, the Service
// contract, a gRPC client and descriptor, and an in-memory backend for
// development.
package rpc

import "context"

// Service is the set of remote operations. Every call is attempted once; the
// server is the only authority on conflicting mutations.
type Service interface {
	LogIn(ctx context.Context, req *LogInRequest) (*LogInResponse, error)
	RegisterUser(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	GetTask(ctx context.Context, req *GetTaskRequest) (*GetTaskResponse, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*CreateTaskResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) error
	DeleteTask(ctx context.Context, req *DeleteTaskRequest) error
}
