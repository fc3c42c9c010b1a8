package rpc

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TaskInfo is the full set of a task's mutable fields, always fully specified
// on create.
type TaskInfo struct {
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Deadline *timestamppb.Timestamp `json:"dead_line,omitempty"`
	Status   bool                   `json:"status"`
	Author   int64                  `json:"author"`
}

// DeadlineTime returns the deadline and whether one is set.
func (i *TaskInfo) DeadlineTime() (time.Time, bool) {
	if i == nil || i.Deadline == nil {
		return time.Time{}, false
	}
	return i.Deadline.AsTime(), true
}

// Task is a stored task. The server assigns ID.
type Task struct {
	ID   int64     `json:"id"`
	Info *TaskInfo `json:"info"`
}

// UpdateTaskInfo is a partial TaskInfo: a nil field is left unchanged, a
// present one overwrites.
type UpdateTaskInfo struct {
	Title    *wrapperspb.StringValue `json:"title,omitempty"`
	Content  *wrapperspb.StringValue `json:"content,omitempty"`
	Deadline *timestamppb.Timestamp  `json:"dead_line,omitempty"`
	Status   *wrapperspb.BoolValue   `json:"status,omitempty"`
	Author   *wrapperspb.Int64Value  `json:"author,omitempty"`
}

type LogInRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LogInResponse struct {
	ID int64 `json:"id"`
}

type RegisterRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID int64 `json:"id"`
}

type ListTasksRequest struct {
	PersonID int64 `json:"personId"`
}

type ListTasksResponse struct {
	Notes []*Task `json:"notes"`
}

type GetTaskRequest struct {
	ID int64 `json:"id"`
}

type GetTaskResponse struct {
	Note *Task `json:"note"`
}

type CreateTaskRequest struct {
	Info *TaskInfo `json:"info"`
}

type CreateTaskResponse struct {
	ID int64 `json:"id"`
}

type UpdateTaskRequest struct {
	ID   int64           `json:"id"`
	Info *UpdateTaskInfo `json:"info"`
}

type DeleteTaskRequest struct {
	ID int64 `json:"id"`
}
