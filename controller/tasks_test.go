package controller

import (
	"context"
	"testing"
	"time"

	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const testUserID = 5

func newTaskFixture(t *testing.T, api *MockService) *fixture {
	t.Helper()
	f := newFixture(t, dom.TasksPage(), api)
	f.store.Set(testUserID)
	return f
}

func listOf(tasks ...*rpc.Task) func(*rpc.ListTasksRequest) (*rpc.ListTasksResponse, error) {
	return func(*rpc.ListTasksRequest) (*rpc.ListTasksResponse, error) {
		return &rpc.ListTasksResponse{Notes: tasks}, nil
	}
}

func card(f *fixture, id string) *dom.Element {
	return f.doc.FindByData("task-card", "id", id)
}

func actionButton(f *fixture, class, id string) *dom.Element {
	return f.doc.FindByData(class, "id", id)
}

func childWithClass(el *dom.Element, class string) *dom.Element {
	found := el.QueryClass(class)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func TestInitTasks_NoSession(t *testing.T) {
	api := &MockService{}
	f := newFixture(t, dom.TasksPage(), api)

	f.ctrl.Initialize()

	assert.Equal(t, []string{"/index.html"}, f.nav.paths)
	assert.Empty(t, api.Calls)
	assert.Zero(t, f.doc.GetElementByID("createTaskForm").ListenerCount("submit"))
}

func TestInitTasks_MissingElement(t *testing.T) {
	api := &MockService{}
	f := newTaskFixture(t, api)
	f.doc.GetElementByID("closeModalBtn").Remove()

	f.ctrl.Initialize()

	assert.Empty(t, api.Calls)
	assert.Zero(t, f.doc.GetElementByID("addTaskBtn").ListenerCount("click"))
	assert.Nil(t, f.doc.GetElementByID(taskMessageID))
}

func TestInitTasks_CreatesMessageBeforeList(t *testing.T) {
	api := &MockService{}
	f := newTaskFixture(t, api)

	f.ctrl.Initialize()

	msg := f.doc.GetElementByID(taskMessageID)
	require.NotNil(t, msg)
	list := f.doc.GetElementByID("taskList")
	siblings := list.Parent().Children()
	for i, el := range siblings {
		if el == list {
			require.Greater(t, i, 0)
			assert.Same(t, msg, siblings[i-1])
		}
	}
}

func TestLoadTasks(t *testing.T) {
	t.Run("scoped to session user", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		require.Len(t, api.Lists, 1)
		assert.Equal(t, int64(testUserID), api.Lists[0].PersonID)
	})

	t.Run("empty list", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		list := f.doc.GetElementByID("taskList")
		require.Len(t, list.Children(), 1)
		assert.Equal(t, msgNoTasks, list.Children()[0].Text)
	})

	t.Run("error replaces list", func(t *testing.T) {
		api := &MockService{
			ListFunc: func(*rpc.ListTasksRequest) (*rpc.ListTasksResponse, error) {
				return nil, rpc.ErrPersonNotFound
			},
		}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		list := f.doc.GetElementByID("taskList")
		require.Len(t, list.Children(), 1)
		assert.Equal(t, msgLoadFailed, list.Children()[0].Text)
		assert.True(t, list.Children()[0].HasClass("text-danger"))
	})

	t.Run("cards with placeholders", func(t *testing.T) {
		api := &MockService{ListFunc: listOf(
			&rpc.Task{ID: 1, Info: &rpc.TaskInfo{Title: "A", Content: "B"}},
			&rpc.Task{ID: 2, Info: &rpc.TaskInfo{}},
		)}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		first := card(f, "1")
		require.NotNil(t, first)
		assert.Equal(t, "A", childWithClass(first, "card-title").Text)
		assert.Equal(t, "B", childWithClass(first, "card-text").Text)
		assert.Equal(t, "Deadline: "+msgNoDeadline, childWithClass(first, "deadline-text").Text)
		assert.Equal(t, "Status: "+msgNotDone, childWithClass(first, "status-text").Text)

		second := card(f, "2")
		require.NotNil(t, second)
		assert.Equal(t, msgUntitled, childWithClass(second, "card-title").Text)
		assert.Equal(t, msgNoDescription, childWithClass(second, "card-text").Text)

		for _, class := range []string{classView, classEdit, classDelete, classComplete} {
			btn := actionButton(f, class, "1")
			require.NotNil(t, btn, class)
			assert.Equal(t, 1, btn.ListenerCount("click"), class)
		}
	})
}

func TestDeadlineStyling(t *testing.T) {
	past := timestamppb.New(testNow.Add(-time.Hour))
	future := timestamppb.New(testNow.Add(time.Hour))

	tests := []struct {
		name  string
		info  *rpc.TaskInfo
		class string
	}{
		{"overdue", &rpc.TaskInfo{Deadline: past}, "text-danger"},
		{"done in the past", &rpc.TaskInfo{Deadline: past, Status: true}, "text-muted"},
		{"upcoming", &rpc.TaskInfo{Deadline: future}, "text-muted"},
		{"no deadline", &rpc.TaskInfo{}, "text-muted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := renderCard(&rpc.Task{ID: 9, Info: tt.info}, testNow, time.UTC)
			deadline := childWithClass(el, "deadline-text")
			require.NotNil(t, deadline)
			assert.True(t, deadline.HasClass(tt.class), deadline.ClassName())
		})
	}

	text, _ := deadlineView(&rpc.TaskInfo{Deadline: past}, testNow, time.UTC)
	assert.Equal(t, "10.03.2025, 11:00:00", text)
}

func TestCreateTask(t *testing.T) {
	t.Run("without deadline", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()
		f.click("addTaskBtn")
		assert.False(t, f.doc.GetElementByID("createTaskCard").Hidden)

		f.set("title", " A ")
		f.set("content", "B")
		ev := f.submit("createTaskForm")

		assert.True(t, ev.DefaultPrevented())
		require.Len(t, api.Creates, 1)
		info := api.Creates[0].Info
		assert.Equal(t, "A", info.Title)
		assert.Equal(t, "B", info.Content)
		assert.False(t, info.Status)
		assert.Equal(t, int64(testUserID), info.Author)
		assert.Nil(t, info.Deadline)

		assert.Equal(t, 2, api.Count("ListTasks"), "list reloads after create")
		assert.Equal(t, msgTaskCreated, f.text(taskMessageID))
		assert.Empty(t, f.doc.GetElementByID("title").Value)
		assert.True(t, f.doc.GetElementByID("createTaskCard").Hidden)
	})

	t.Run("with deadline", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		f.set("title", "A")
		f.set("content", "B")
		f.set("deadline", "2025-04-01T09:30")
		f.submit("createTaskForm")

		require.Len(t, api.Creates, 1)
		require.NotNil(t, api.Creates[0].Info.Deadline)
		assert.Equal(t, time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC), api.Creates[0].Info.Deadline.AsTime())
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name, title, content, deadline, want string
		}{
			{"empty title", " ", "B", "", msgEnterTitleContent},
			{"empty content", "A", "", "", msgEnterTitleContent},
			{"bad deadline", "A", "B", "tomorrow", msgInvalidDeadline},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				api := &MockService{}
				f := newTaskFixture(t, api)
				f.ctrl.Initialize()

				f.set("title", tt.title)
				f.set("content", tt.content)
				f.set("deadline", tt.deadline)
				f.submit("createTaskForm")

				assert.Zero(t, api.Count("CreateTask"))
				assert.Equal(t, tt.want, f.text(taskMessageID))
			})
		}
	})

	t.Run("error keeps modal open", func(t *testing.T) {
		api := &MockService{
			CreateFunc: func(*rpc.CreateTaskRequest) (*rpc.CreateTaskResponse, error) {
				return nil, rpc.ErrPersonNotFound
			},
		}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()
		f.click("addTaskBtn")

		f.set("title", "A")
		f.set("content", "B")
		f.submit("createTaskForm")

		assert.Equal(t, prefixCreate+rpc.MsgPersonNotFound, f.text(taskMessageID))
		assert.False(t, f.doc.GetElementByID("createTaskCard").Hidden)
		assert.Equal(t, 1, api.Count("ListTasks"))
	})
}

func TestCreateThenList(t *testing.T) {
	backend := rpc.NewMemoryBackend()
	reg, err := backend.RegisterUser(context.Background(), &rpc.RegisterRequest{Login: "alice", Password: "pw"})
	require.NoError(t, err)

	api := &MockService{
		ListFunc: func(req *rpc.ListTasksRequest) (*rpc.ListTasksResponse, error) {
			return backend.ListTasks(context.Background(), req)
		},
		CreateFunc: func(req *rpc.CreateTaskRequest) (*rpc.CreateTaskResponse, error) {
			return backend.CreateTask(context.Background(), req)
		},
	}
	f := newFixture(t, dom.TasksPage(), api)
	f.store.Set(reg.ID)
	f.ctrl.Initialize()

	f.set("title", "A")
	f.set("content", "B")
	f.submit("createTaskForm")

	cards := f.doc.QueryClass("task-card")
	require.Len(t, cards, 1)
	assert.Equal(t, "Status: "+msgNotDone, childWithClass(cards[0], "status-text").Text)
	assert.Equal(t, "Deadline: "+msgNoDeadline, childWithClass(cards[0], "deadline-text").Text)
}

func TestViewTask(t *testing.T) {
	task := &rpc.Task{ID: 3, Info: &rpc.TaskInfo{Title: "Read", Content: "Book", Status: true}}

	t.Run("opens modal", func(t *testing.T) {
		api := &MockService{
			ListFunc: listOf(task),
			GetFunc: func(req *rpc.GetTaskRequest) (*rpc.GetTaskResponse, error) {
				assert.Equal(t, int64(3), req.ID)
				return &rpc.GetTaskResponse{Note: task}, nil
			},
		}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		actionButton(f, classView, "3").Dispatch("click")

		assert.Equal(t, "Read", f.text("modalTitle"))
		assert.Equal(t, "Book", f.text("modalContent"))
		assert.Equal(t, msgNoDeadline, f.text("modalDeadline"))
		assert.Equal(t, msgDone, f.text("modalStatus"))
		assert.False(t, f.doc.GetElementByID("taskModal").Hidden)

		f.click("closeModalBtn")
		assert.True(t, f.doc.GetElementByID("taskModal").Hidden)
	})

	t.Run("error does not open modal", func(t *testing.T) {
		api := &MockService{
			ListFunc: listOf(task),
			GetFunc: func(*rpc.GetTaskRequest) (*rpc.GetTaskResponse, error) {
				return nil, rpc.ErrTaskNotFound
			},
		}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		actionButton(f, classView, "3").Dispatch("click")

		assert.Equal(t, prefixFetch+rpc.MsgTaskNotFound, f.text(taskMessageID))
		assert.True(t, f.doc.GetElementByID("taskModal").Hidden)
	})
}

func TestEditTask(t *testing.T) {
	deadline := time.Date(2025, 5, 2, 18, 45, 0, 0, time.UTC)
	task := &rpc.Task{ID: 4, Info: &rpc.TaskInfo{
		Title:    "Old",
		Content:  "Text",
		Deadline: timestamppb.New(deadline),
		Status:   true,
	}}
	api := &MockService{
		ListFunc: listOf(task),
		GetFunc: func(*rpc.GetTaskRequest) (*rpc.GetTaskResponse, error) {
			return &rpc.GetTaskResponse{Note: task}, nil
		},
	}
	f := newTaskFixture(t, api)
	f.ctrl.Initialize()

	actionButton(f, classEdit, "4").Dispatch("click")

	assert.Equal(t, "4", f.doc.GetElementByID("editId").Value)
	assert.Equal(t, "Old", f.doc.GetElementByID("editTitle").Value)
	assert.Equal(t, "Text", f.doc.GetElementByID("editContent").Value)
	assert.Equal(t, "2025-05-02T18:45", f.doc.GetElementByID("editDeadline").Value)
	assert.Equal(t, "true", f.doc.GetElementByID("editStatus").Value)
	assert.False(t, f.doc.GetElementByID("editTaskModal").Hidden)

	f.set("editTitle", "New")
	f.set("editStatus", "false")
	f.submit("editTaskForm")

	require.Len(t, api.Updates, 1)
	req := api.Updates[0]
	assert.Equal(t, int64(4), req.ID)
	require.NotNil(t, req.Info.Title)
	assert.Equal(t, "New", req.Info.Title.GetValue())
	require.NotNil(t, req.Info.Content)
	assert.Equal(t, "Text", req.Info.Content.GetValue())
	require.NotNil(t, req.Info.Deadline)
	assert.Equal(t, deadline, req.Info.Deadline.AsTime())
	require.NotNil(t, req.Info.Status)
	assert.False(t, req.Info.Status.GetValue())
	assert.Nil(t, req.Info.Author)

	assert.Equal(t, msgTaskUpdated, f.text(taskMessageID))
	assert.Equal(t, 2, api.Count("ListTasks"))
	assert.True(t, f.doc.GetElementByID("editTaskModal").Hidden)
}

func TestEditSubmit_Errors(t *testing.T) {
	t.Run("remote error", func(t *testing.T) {
		api := &MockService{
			UpdateFunc: func(*rpc.UpdateTaskRequest) error { return rpc.ErrTaskNotFound },
		}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		f.set("editId", "8")
		f.set("editTitle", "T")
		f.set("editContent", "C")
		f.submit("editTaskForm")

		assert.Equal(t, prefixUpdate+rpc.MsgTaskNotFound, f.text(taskMessageID))
		assert.Equal(t, 1, api.Count("ListTasks"))
	})

	t.Run("invalid id", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		f.set("editTitle", "T")
		f.set("editContent", "C")
		f.submit("editTaskForm")

		assert.Equal(t, msgInvalidTaskID, f.text(taskMessageID))
		assert.Zero(t, api.Count("UpdateTask"))
	})

	t.Run("cancel closes and clears", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		f.submit("editTaskForm")
		assert.NotEmpty(t, f.text(taskMessageID))

		f.doc.GetElementByID("editTaskModal").Show()
		f.click("cancelEdit")
		assert.True(t, f.doc.GetElementByID("editTaskModal").Hidden)
		assert.Empty(t, f.text(taskMessageID))
	})
}

func TestDeleteTask(t *testing.T) {
	task := &rpc.Task{ID: 6, Info: &rpc.TaskInfo{Title: "Gone"}}

	t.Run("success reloads", func(t *testing.T) {
		api := &MockService{ListFunc: listOf(task)}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		actionButton(f, classDelete, "6").Dispatch("click")

		assert.Equal(t, 1, api.Count("DeleteTask"))
		assert.Equal(t, msgTaskDeleted, f.text(taskMessageID))
		assert.Equal(t, 2, api.Count("ListTasks"))
	})

	t.Run("nonexistent id does not reload", func(t *testing.T) {
		api := &MockService{
			ListFunc:   listOf(task),
			DeleteFunc: func(*rpc.DeleteTaskRequest) error { return rpc.ErrTaskNotFound },
		}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		actionButton(f, classDelete, "6").Dispatch("click")

		assert.Equal(t, prefixDelete+rpc.MsgTaskNotFound, f.text(taskMessageID))
		assert.Equal(t, 1, api.Count("ListTasks"))
		assert.NotNil(t, card(f, "6"), "no optimistic removal")
	})

	t.Run("each click issues a request", func(t *testing.T) {
		api := &MockService{ListFunc: listOf(task)}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		btn := actionButton(f, classDelete, "6")
		btn.Dispatch("click")
		btn.Dispatch("click")

		assert.Equal(t, 2, api.Count("DeleteTask"))
	})
}

func TestCompleteTask(t *testing.T) {
	tasks := []*rpc.Task{
		{ID: 1, Info: &rpc.TaskInfo{Title: "One"}},
		{ID: 2, Info: &rpc.TaskInfo{Title: "Two"}},
	}

	t.Run("patches status only", func(t *testing.T) {
		api := &MockService{ListFunc: listOf(tasks...)}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		actionButton(f, classComplete, "2").Dispatch("click")

		require.Len(t, api.Updates, 1)
		req := api.Updates[0]
		assert.Equal(t, int64(2), req.ID)
		require.NotNil(t, req.Info.Status)
		assert.True(t, req.Info.Status.GetValue())
		assert.Nil(t, req.Info.Title)
		assert.Nil(t, req.Info.Content)
		assert.Nil(t, req.Info.Deadline)
		assert.Nil(t, req.Info.Author)

		assert.Equal(t, 1, api.Count("ListTasks"), "no reload")
		assert.Equal(t, msgTaskCompleted, f.text(taskMessageID))

		done := childWithClass(card(f, "2"), "status-text")
		assert.True(t, done.HasClass("text-success"))
		assert.Equal(t, "Status: "+msgDone, done.Text)

		other := childWithClass(card(f, "1"), "status-text")
		assert.True(t, other.HasClass("text-warning"))
		assert.Equal(t, "Status: "+msgNotDone, other.Text)
	})

	t.Run("error leaves card", func(t *testing.T) {
		api := &MockService{
			ListFunc:   listOf(tasks...),
			UpdateFunc: func(*rpc.UpdateTaskRequest) error { return rpc.ErrTaskNotFound },
		}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		actionButton(f, classComplete, "1").Dispatch("click")

		assert.Equal(t, prefixComplete+rpc.MsgTaskNotFound, f.text(taskMessageID))
		status := childWithClass(card(f, "1"), "status-text")
		assert.True(t, status.HasClass("text-warning"))
	})
}

func TestAuxiliaryBindings(t *testing.T) {
	t.Run("cancel create resets form", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		f.click("addTaskBtn")
		f.set("title", "draft")
		f.click("cancelCreateBtn")

		assert.True(t, f.doc.GetElementByID("createTaskCard").Hidden)
		assert.Empty(t, f.doc.GetElementByID("title").Value)
	})

	t.Run("logout", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()

		f.click("logout")

		_, ok := f.store.Get()
		assert.False(t, ok)
		assert.Equal(t, []string{"/index.html"}, f.nav.paths)
	})

	t.Run("initialize twice binds once", func(t *testing.T) {
		api := &MockService{}
		f := newTaskFixture(t, api)
		f.ctrl.Initialize()
		f.ctrl.Initialize()

		assert.Equal(t, 1, api.Count("ListTasks"))
		assert.Equal(t, 1, f.doc.GetElementByID("createTaskForm").ListenerCount("submit"))
		assert.Equal(t, 1, f.doc.GetElementByID("logout").ListenerCount("click"))

		f.set("title", "A")
		f.set("content", "B")
		f.submit("createTaskForm")
		assert.Equal(t, 1, api.Count("CreateTask"))
	})
}
