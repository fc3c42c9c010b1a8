package rpc

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type person struct {
	id   int64
	hash []byte
}

// MemoryBackend is an in-process implementation of Service used by the
// development server and tests. Lists are returned in creation order.
type MemoryBackend struct {
	mu      sync.RWMutex
	persons map[string]person
	tasks   map[int64]*Task
	order   []int64
	nextID  int64
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		persons: make(map[string]person),
		tasks:   make(map[int64]*Task),
	}
}

func (b *MemoryBackend) RegisterUser(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "login and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to hash password: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.persons[login]; exists {
		return nil, ErrUserExists
	}
	b.nextID++
	b.persons[login] = person{id: b.nextID, hash: hash}
	return &RegisterResponse{ID: b.nextID}, nil
}

func (b *MemoryBackend) LogIn(ctx context.Context, req *LogInRequest) (*LogInResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	b.mu.RLock()
	p, ok := b.persons[strings.TrimSpace(req.Login)]
	b.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(p.hash, []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &LogInResponse{ID: p.id}, nil
}

func (b *MemoryBackend) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.personExists(req.PersonID) {
		return nil, ErrPersonNotFound
	}
	out := &ListTasksResponse{Notes: []*Task{}}
	for _, id := range b.order {
		t := b.tasks[id]
		if t.Info.Author == req.PersonID {
			out.Notes = append(out.Notes, cloneTask(t))
		}
	}
	return out, nil
}

func (b *MemoryBackend) GetTask(ctx context.Context, req *GetTaskRequest) (*GetTaskResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.tasks[req.ID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &GetTaskResponse{Note: cloneTask(t)}, nil
}

func (b *MemoryBackend) CreateTask(ctx context.Context, req *CreateTaskRequest) (*CreateTaskResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if req.Info == nil {
		return nil, status.Error(codes.InvalidArgument, "task info is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.personExists(req.Info.Author) {
		return nil, status.Error(codes.InvalidArgument, "error to use this user id")
	}
	b.nextID++
	info := *req.Info
	if req.Info.Deadline != nil {
		info.Deadline = proto.Clone(req.Info.Deadline).(*timestamppb.Timestamp)
	}
	b.tasks[b.nextID] = &Task{ID: b.nextID, Info: &info}
	b.order = append(b.order, b.nextID)
	return &CreateTaskResponse{ID: b.nextID}, nil
}

func (b *MemoryBackend) UpdateTask(ctx context.Context, req *UpdateTaskRequest) error {
	if err := ctx.Err(); err != nil {
		return status.FromContextError(err).Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tasks[req.ID]
	if !ok {
		return ErrTaskNotFound
	}
	patch := req.Info
	if patch == nil {
		return nil
	}
	if patch.Author != nil {
		if !b.personExists(patch.Author.GetValue()) {
			return ErrPersonNotFound
		}
		t.Info.Author = patch.Author.GetValue()
	}
	if patch.Title != nil {
		t.Info.Title = patch.Title.GetValue()
	}
	if patch.Content != nil {
		t.Info.Content = patch.Content.GetValue()
	}
	if patch.Deadline != nil {
		t.Info.Deadline = proto.Clone(patch.Deadline).(*timestamppb.Timestamp)
	}
	if patch.Status != nil {
		t.Info.Status = patch.Status.GetValue()
	}
	return nil
}

func (b *MemoryBackend) DeleteTask(ctx context.Context, req *DeleteTaskRequest) error {
	if err := ctx.Err(); err != nil {
		return status.FromContextError(err).Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.tasks[req.ID]; !ok {
		return ErrTaskNotFound
	}
	delete(b.tasks, req.ID)
	for i, id := range b.order {
		if id == req.ID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// personExists must be called with b.mu held.
func (b *MemoryBackend) personExists(id int64) bool {
	for _, p := range b.persons {
		if p.id == id {
			return true
		}
	}
	return false
}

func cloneTask(t *Task) *Task {
	info := *t.Info
	if t.Info.Deadline != nil {
		info.Deadline = proto.Clone(t.Info.Deadline).(*timestamppb.Timestamp)
	}
	return &Task{ID: t.ID, Info: &info}
}
