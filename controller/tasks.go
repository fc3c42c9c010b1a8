package controller

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// requiredTaskElements must all be present for the task page to bind.
var requiredTaskElements = []string{
	"taskList",
	"createTaskForm",
	"editTaskForm",
	"logout",
	"cancelEdit",
	"addTaskBtn",
	"cancelCreateBtn",
	"taskModal",
	"modalTitle",
	"modalContent",
	"modalDeadline",
	"modalStatus",
	"closeModalBtn",
	"createTaskCard",
	"editTaskModal",
}

const taskMessageID = "taskMessage"

var errInvalidDeadline = errors.New("invalid deadline")

// taskPage is the bound task page of one logged-in user.
type taskPage struct {
	c      *Controller
	userID int64
	el     map[string]*dom.Element
	msg    *dom.Element
}

func (c *Controller) initTasks() {
	if c.tasksAttached {
		c.log.Debug("task page already attached")
		return
	}
	c.tasksAttached = true

	userID, ok := c.session.Get()
	if !ok {
		c.nav.Redirect(c.opts.AuthPath)
		return
	}

	el := make(map[string]*dom.Element, len(requiredTaskElements))
	var missing []string
	for _, id := range requiredTaskElements {
		e := c.doc.GetElementByID(id)
		if e == nil {
			missing = append(missing, id)
			continue
		}
		el[id] = e
	}
	if len(missing) > 0 {
		c.log.WithField("missing", missing).Warn("task page is not fully loaded")
		return
	}

	msg := c.doc.GetElementByID(taskMessageID)
	if msg == nil {
		msg = dom.NewElement("p").WithID(taskMessageID)
	}
	el["taskList"].Before(msg)

	p := &taskPage{c: c, userID: userID, el: el, msg: msg}
	p.bind()
	p.loadTasks()
}

func (p *taskPage) bind() {
	p.el["addTaskBtn"].BindOnce("click", func(*dom.Event) {
		p.el["createTaskCard"].Show()
	})
	p.el["cancelCreateBtn"].BindOnce("click", func(*dom.Event) {
		p.el["createTaskCard"].Hide()
		p.el["createTaskForm"].Reset()
		p.msg.Text = ""
	})
	p.el["cancelEdit"].BindOnce("click", func(*dom.Event) {
		p.el["editTaskModal"].Hide()
		p.msg.Text = ""
	})
	p.el["closeModalBtn"].BindOnce("click", func(*dom.Event) {
		p.el["taskModal"].Hide()
	})
	p.el["logout"].BindOnce("click", func(*dom.Event) {
		p.c.session.Clear()
		p.c.nav.Redirect(p.c.opts.AuthPath)
	})
	p.el["createTaskForm"].BindOnce("submit", p.submitCreate)
	p.el["editTaskForm"].BindOnce("submit", p.submitEdit)
}

func (p *taskPage) fail(text string) {
	p.c.feedback.Show(p.msg, text, ColorError)
}

func (p *taskPage) succeed(text string) {
	p.c.feedback.Show(p.msg, text, ColorSuccess)
}

// loadTasks replaces the list with the user's tasks. The list is cleared
// only once a response has arrived.
func (p *taskPage) loadTasks() {
	const op = "controller.loadTasks"

	c := p.c
	req := &rpc.ListTasksRequest{PersonID: p.userID}
	call(c, func(ctx context.Context) (*rpc.ListTasksResponse, error) {
		return c.api.ListTasks(ctx, req)
	}, func(resp *rpc.ListTasksResponse, err error) {
		list := p.el["taskList"]
		if err != nil {
			c.rpcError(op, err)
			list.ClearChildren()
			list.AppendChild(listError())
			return
		}

		var notes []*rpc.Task
		if resp != nil {
			notes = resp.Notes
		}
		list.ClearChildren()
		if len(notes) == 0 {
			list.AppendChild(emptyList())
			return
		}
		now := c.opts.Now()
		for _, t := range notes {
			list.AppendChild(renderCard(t, now, c.opts.Location))
		}
		p.bindCards(list)
		c.log.WithField("operation", op).WithField("count", len(notes)).Debug("tasks rendered")
	})
}

// bindCards attaches the action handlers of freshly rendered cards.
func (p *taskPage) bindCards(list *dom.Element) {
	actions := map[string]func(int64){
		classView:     p.viewTask,
		classEdit:     p.editTask,
		classDelete:   p.deleteTask,
		classComplete: p.completeTask,
	}
	for class, action := range actions {
		for _, btn := range list.QueryClass(class) {
			btn.BindOnce("click", func(e *dom.Event) {
				raw, _ := e.Target.Data("id")
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					p.fail(msgInvalidTaskID)
					return
				}
				action(id)
			})
		}
	}
}

func (p *taskPage) getTask(op string, id int64, done func(*rpc.TaskInfo)) {
	c := p.c
	req := &rpc.GetTaskRequest{ID: id}
	call(c, func(ctx context.Context) (*rpc.GetTaskResponse, error) {
		return c.api.GetTask(ctx, req)
	}, func(resp *rpc.GetTaskResponse, err error) {
		if err != nil {
			p.fail(prefixFetch + c.rpcError(op, err))
			return
		}
		info := &rpc.TaskInfo{}
		if resp != nil && resp.Note != nil && resp.Note.Info != nil {
			info = resp.Note.Info
		}
		done(info)
	})
}

func (p *taskPage) viewTask(id int64) {
	p.getTask("controller.viewTask", id, func(info *rpc.TaskInfo) {
		p.el["modalTitle"].Text = orDefault(info.Title, msgUntitled)
		p.el["modalContent"].Text = orDefault(info.Content, msgNoDescription)
		deadline, _ := deadlineView(info, p.c.opts.Now(), p.c.opts.Location)
		p.el["modalDeadline"].Text = deadline
		p.el["modalStatus"].Text = statusText(info.Status)
		p.el["taskModal"].Show()
	})
}

func (p *taskPage) editTask(id int64) {
	p.getTask("controller.editTask", id, func(info *rpc.TaskInfo) {
		doc := p.c.doc
		setValue(doc, "editId", strconv.FormatInt(id, 10))
		setValue(doc, "editTitle", info.Title)
		setValue(doc, "editContent", info.Content)
		deadline := ""
		if t, ok := info.DeadlineTime(); ok {
			deadline = t.In(p.c.opts.Location).Format(inputLayout)
		}
		setValue(doc, "editDeadline", deadline)
		setValue(doc, "editStatus", strconv.FormatBool(info.Status))
		p.el["editTaskModal"].Show()
	})
}

func (p *taskPage) submitCreate(e *dom.Event) {
	const op = "controller.createTask"
	e.PreventDefault()

	c := p.c
	title := strings.TrimSpace(c.value("title"))
	content := strings.TrimSpace(c.value("content"))
	if title == "" || content == "" {
		p.fail(msgEnterTitleContent)
		return
	}
	deadline, err := p.parseDeadline(c.value("deadline"))
	if err != nil {
		p.fail(msgInvalidDeadline)
		return
	}

	req := &rpc.CreateTaskRequest{Info: &rpc.TaskInfo{
		Title:    title,
		Content:  content,
		Deadline: deadline,
		Status:   false,
		Author:   p.userID,
	}}
	call(c, func(ctx context.Context) (*rpc.CreateTaskResponse, error) {
		return c.api.CreateTask(ctx, req)
	}, func(resp *rpc.CreateTaskResponse, err error) {
		if err != nil {
			p.fail(prefixCreate + c.rpcError(op, err))
			return
		}
		if resp != nil {
			c.log.WithField("operation", op).WithField("id", resp.ID).Info("task created")
		}
		p.succeed(msgTaskCreated)
		p.loadTasks()
		p.el["createTaskForm"].Reset()
		p.el["createTaskCard"].Hide()
	})
}

// submitEdit always sends title, content and status, and the deadline when
// one is entered, so the saved task mirrors the form.
func (p *taskPage) submitEdit(e *dom.Event) {
	const op = "controller.updateTask"
	e.PreventDefault()

	c := p.c
	id, err := strconv.ParseInt(c.value("editId"), 10, 64)
	if err != nil {
		p.fail(msgInvalidTaskID)
		return
	}
	title := strings.TrimSpace(c.value("editTitle"))
	content := strings.TrimSpace(c.value("editContent"))
	if title == "" || content == "" {
		p.fail(msgEnterTitleContent)
		return
	}
	deadline, err := p.parseDeadline(c.value("editDeadline"))
	if err != nil {
		p.fail(msgInvalidDeadline)
		return
	}

	req := &rpc.UpdateTaskRequest{ID: id, Info: &rpc.UpdateTaskInfo{
		Title:    wrapperspb.String(title),
		Content:  wrapperspb.String(content),
		Deadline: deadline,
		Status:   wrapperspb.Bool(c.value("editStatus") == "true"),
	}}
	callErr(c, func(ctx context.Context) error {
		return c.api.UpdateTask(ctx, req)
	}, func(err error) {
		if err != nil {
			p.fail(prefixUpdate + c.rpcError(op, err))
			return
		}
		p.succeed(msgTaskUpdated)
		p.loadTasks()
		p.el["editTaskModal"].Hide()
	})
}

func (p *taskPage) deleteTask(id int64) {
	const op = "controller.deleteTask"

	c := p.c
	req := &rpc.DeleteTaskRequest{ID: id}
	callErr(c, func(ctx context.Context) error {
		return c.api.DeleteTask(ctx, req)
	}, func(err error) {
		if err != nil {
			p.fail(prefixDelete + c.rpcError(op, err))
			return
		}
		p.succeed(msgTaskDeleted)
		p.loadTasks()
	})
}

// completeTask patches only the status and flips the card in place.
func (p *taskPage) completeTask(id int64) {
	const op = "controller.completeTask"

	c := p.c
	req := &rpc.UpdateTaskRequest{ID: id, Info: &rpc.UpdateTaskInfo{
		Status: wrapperspb.Bool(true),
	}}
	callErr(c, func(ctx context.Context) error {
		return c.api.UpdateTask(ctx, req)
	}, func(err error) {
		if err != nil {
			p.fail(prefixComplete + c.rpcError(op, err))
			return
		}
		p.succeed(msgTaskCompleted)

		card := c.doc.FindByData("task-card", "id", strconv.FormatInt(id, 10))
		if card == nil {
			return
		}
		if status := card.QueryClass("status-text"); len(status) > 0 {
			status[0].SetClassName("status-text text-success")
			status[0].Text = "Status: " + statusText(true)
		}
	})
}

// parseDeadline reads a datetime input value. An empty value means no
// deadline.
func (p *taskPage) parseDeadline(value string) (*timestamppb.Timestamp, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{inputLayout, inputLayout + ":05"} {
		if t, err := time.ParseInLocation(layout, value, p.c.opts.Location); err == nil {
			return timestamppb.New(t), nil
		}
	}
	return nil, errInvalidDeadline
}

func setValue(doc *dom.Document, id, value string) {
	if el := doc.GetElementByID(id); el != nil {
		el.Value = value
	}
}
