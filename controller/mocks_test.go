package controller

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
	"github.com/CrowderSoup/taskdesk/session"
	"github.com/sirupsen/logrus"
)

// MockService implements rpc.Service for testing. Unset funcs succeed with
// empty responses.
type MockService struct {
	mu sync.Mutex

	LogInFunc    func(req *rpc.LogInRequest) (*rpc.LogInResponse, error)
	RegisterFunc func(req *rpc.RegisterRequest) (*rpc.RegisterResponse, error)
	ListFunc     func(req *rpc.ListTasksRequest) (*rpc.ListTasksResponse, error)
	GetFunc      func(req *rpc.GetTaskRequest) (*rpc.GetTaskResponse, error)
	CreateFunc   func(req *rpc.CreateTaskRequest) (*rpc.CreateTaskResponse, error)
	UpdateFunc   func(req *rpc.UpdateTaskRequest) error
	DeleteFunc   func(req *rpc.DeleteTaskRequest) error

	Calls   []string
	Creates []*rpc.CreateTaskRequest
	Updates []*rpc.UpdateTaskRequest
	Lists   []*rpc.ListTasksRequest
}

func (m *MockService) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
}

func (m *MockService) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockService) LogIn(_ context.Context, req *rpc.LogInRequest) (*rpc.LogInResponse, error) {
	m.record("LogIn")
	if m.LogInFunc != nil {
		return m.LogInFunc(req)
	}
	return &rpc.LogInResponse{}, nil
}

func (m *MockService) RegisterUser(_ context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	m.record("RegisterUser")
	if m.RegisterFunc != nil {
		return m.RegisterFunc(req)
	}
	return &rpc.RegisterResponse{}, nil
}

func (m *MockService) ListTasks(_ context.Context, req *rpc.ListTasksRequest) (*rpc.ListTasksResponse, error) {
	m.record("ListTasks")
	m.mu.Lock()
	m.Lists = append(m.Lists, req)
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(req)
	}
	return &rpc.ListTasksResponse{}, nil
}

func (m *MockService) GetTask(_ context.Context, req *rpc.GetTaskRequest) (*rpc.GetTaskResponse, error) {
	m.record("GetTask")
	if m.GetFunc != nil {
		return m.GetFunc(req)
	}
	return &rpc.GetTaskResponse{}, nil
}

func (m *MockService) CreateTask(_ context.Context, req *rpc.CreateTaskRequest) (*rpc.CreateTaskResponse, error) {
	m.record("CreateTask")
	m.mu.Lock()
	m.Creates = append(m.Creates, req)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(req)
	}
	return &rpc.CreateTaskResponse{ID: 1}, nil
}

func (m *MockService) UpdateTask(_ context.Context, req *rpc.UpdateTaskRequest) error {
	m.record("UpdateTask")
	m.mu.Lock()
	m.Updates = append(m.Updates, req)
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(req)
	}
	return nil
}

func (m *MockService) DeleteTask(_ context.Context, req *rpc.DeleteTaskRequest) error {
	m.record("DeleteTask")
	if m.DeleteFunc != nil {
		return m.DeleteFunc(req)
	}
	return nil
}

// syncScheduler runs work inline and holds timers until fire is called.
type syncScheduler struct {
	timers []scheduledFunc
}

type scheduledFunc struct {
	timer *time.Timer
	fn    func()
}

func (s *syncScheduler) Go(work func() func()) {
	if done := work(); done != nil {
		done()
	}
}

func (s *syncScheduler) AfterFunc(_ time.Duration, fn func()) *time.Timer {
	t := time.AfterFunc(time.Hour, func() {})
	s.timers = append(s.timers, scheduledFunc{timer: t, fn: fn})
	return t
}

// fire runs every timer that has not been stopped.
func (s *syncScheduler) fire() {
	timers := s.timers
	s.timers = nil
	for _, sf := range timers {
		if sf.timer.Stop() {
			sf.fn()
		}
	}
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Redirect(path string) {
	n.paths = append(n.paths, path)
}

type fixture struct {
	api   *MockService
	doc   *dom.Document
	store *session.Store
	sched *syncScheduler
	nav   *recordingNavigator
	ctrl  *Controller
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, doc *dom.Document, api *MockService) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	f := &fixture{
		api:   api,
		doc:   doc,
		store: session.NewStore(session.NewMemoryStorage(), log),
		sched: &syncScheduler{},
		nav:   &recordingNavigator{},
	}
	f.ctrl = New(Deps{
		API:       api,
		Session:   f.store,
		Document:  doc,
		Loop:      f.sched,
		Navigator: f.nav,
		Log:       log,
	}, Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	return f
}

func (f *fixture) set(id, value string) {
	f.doc.GetElementByID(id).Value = value
}

func (f *fixture) submit(id string) *dom.Event {
	return f.doc.GetElementByID(id).Dispatch("submit")
}

func (f *fixture) click(id string) {
	f.doc.GetElementByID(id).Dispatch("click")
}

func (f *fixture) text(id string) string {
	return f.doc.GetElementByID(id).Text
}
