package dom

// Page names accepted by NewPage.
const (
	PageAuth  = "auth"
	PageTasks = "tasks"
)

// NewPage builds the document for a named page, or nil for an unknown name.
func NewPage(page string) *Document {
	switch page {
	case PageAuth:
		return AuthPage()
	case PageTasks:
		return TasksPage()
	}
	return nil
}

// AuthPage builds the login/registration page.
func AuthPage() *Document {
	d := NewDocument(PageAuth)
	d.Body.Append(
		NewElement("div").WithClass("container", "auth").Append(
			NewElement("h2").WithText("Log in"),
			NewElement("form").WithID("loginForm").Append(
				input("login", "text"),
				input("password", "password"),
				button("", "submit", "Log in").WithClass("btn", "btn-primary"),
			),
			NewElement("h2").WithText("Register"),
			NewElement("form").WithID("registerForm").Append(
				input("regLogin", "text"),
				input("regPassword", "password"),
				button("", "submit", "Register").WithClass("btn", "btn-secondary"),
			),
			NewElement("p").WithID("message"),
		),
	)
	return d
}

// TasksPage builds the task list page with its three modals. The feedback
// element is left out on purpose: the controller creates it above the list.
func TasksPage() *Document {
	d := NewDocument(PageTasks)

	status := NewElement("select").WithID("editStatus")
	status.DefaultValue = "false"
	status.Value = "false"
	status.Append(
		option("false", "Not completed"),
		option("true", "Completed"),
	)

	d.Body.Append(
		NewElement("div").WithClass("container", "tasks").Append(
			NewElement("header").Append(
				button("addTaskBtn", "button", "Add task").WithClass("btn", "btn-primary"),
				button("logout", "button", "Log out").WithClass("btn", "btn-outline-secondary"),
			),
			NewElement("div").WithID("taskList").WithClass("row"),
		),
		modal("createTaskCard").Append(
			NewElement("form").WithID("createTaskForm").Append(
				input("title", "text"),
				textarea("content"),
				input("deadline", "datetime-local"),
				button("", "submit", "Create").WithClass("btn", "btn-success"),
				button("cancelCreateBtn", "button", "Cancel").WithClass("btn", "btn-secondary"),
			),
		),
		modal("editTaskModal").Append(
			NewElement("form").WithID("editTaskForm").Append(
				input("editId", "hidden"),
				input("editTitle", "text"),
				textarea("editContent"),
				input("editDeadline", "datetime-local"),
				status,
				button("", "submit", "Save").WithClass("btn", "btn-success"),
				button("cancelEdit", "button", "Cancel").WithClass("btn", "btn-secondary"),
			),
		),
		modal("taskModal").Append(
			NewElement("h5").WithID("modalTitle"),
			NewElement("p").WithID("modalContent"),
			NewElement("p").WithID("modalDeadline"),
			NewElement("p").WithID("modalStatus"),
			button("closeModalBtn", "button", "Close").WithClass("btn", "btn-secondary"),
		),
	)
	return d
}

func input(id, typ string) *Element {
	el := NewElement("input").WithID(id)
	el.Type = typ
	return el
}

func option(value, text string) *Element {
	el := NewElement("option").WithText(text)
	el.Value = value
	el.DefaultValue = value
	return el
}

func textarea(id string) *Element {
	return NewElement("textarea").WithID(id)
}

func button(id, typ, text string) *Element {
	el := NewElement("button").WithID(id).WithText(text)
	el.Type = typ
	return el
}

func modal(id string) *Element {
	el := NewElement("div").WithID(id).WithClass("modal")
	el.Hidden = true
	return el
}
