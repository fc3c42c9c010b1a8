package controller

import (
	"strconv"
	"time"

	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
)

// Layouts for deadlines: display text and the datetime input value.
const (
	displayLayout = "02.01.2006, 15:04:05"
	inputLayout   = "2006-01-02T15:04"
)

// Card button classes; every button carries the task id in data-id.
const (
	classView     = "view-btn"
	classEdit     = "edit-btn"
	classDelete   = "delete-btn"
	classComplete = "complete-btn"
)

// deadlineView returns the deadline text and its styling class. An incomplete
// task whose deadline is strictly before now is overdue.
func deadlineView(info *rpc.TaskInfo, now time.Time, loc *time.Location) (string, string) {
	deadline, ok := info.DeadlineTime()
	if !ok {
		return msgNoDeadline, "text-muted"
	}
	text := deadline.In(loc).Format(displayLayout)
	if !info.Status && deadline.Before(now) {
		return text, "text-danger"
	}
	return text, "text-muted"
}

func statusClass(done bool) string {
	if done {
		return "text-success"
	}
	return "text-warning"
}

func renderCard(t *rpc.Task, now time.Time, loc *time.Location) *dom.Element {
	info := t.Info
	if info == nil {
		info = &rpc.TaskInfo{}
	}
	id := strconv.FormatInt(t.ID, 10)
	deadline, deadlineClass := deadlineView(info, now, loc)

	return dom.NewElement("div").WithClass("col-md-4").Append(
		dom.NewElement("div").WithClass("card", "task-card", "shadow-sm").WithData("id", id).Append(
			dom.NewElement("div").WithClass("card-body").Append(
				dom.NewElement("h5").WithClass("card-title").WithText(orDefault(info.Title, msgUntitled)),
				dom.NewElement("p").WithClass("card-text").WithText(orDefault(info.Content, msgNoDescription)),
				dom.NewElement("p").WithClass(deadlineClass, "deadline-text").WithText("Deadline: "+deadline),
				dom.NewElement("p").WithClass(statusClass(info.Status), "status-text").WithText("Status: "+statusText(info.Status)),
				cardButton(classView, "btn-info", id, "View"),
				cardButton(classEdit, "btn-warning", id, "Edit"),
				cardButton(classDelete, "btn-danger", id, "Delete"),
				cardButton(classComplete, "btn-success", id, "Done"),
			),
		),
	)
}

func cardButton(class, style, id, text string) *dom.Element {
	btn := dom.NewElement("button").WithClass("btn", style, class, "me-2").WithData("id", id).WithText(text)
	btn.Type = "button"
	return btn
}

func emptyList() *dom.Element {
	return dom.NewElement("p").WithClass("text-muted", "text-center").WithText(msgNoTasks)
}

func listError() *dom.Element {
	return dom.NewElement("p").WithClass("text-danger", "text-center").WithText(msgLoadFailed)
}
