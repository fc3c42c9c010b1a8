package controller

import "github.com/CrowderSoup/taskdesk/rpc"

// User-facing text.
const (
	msgFieldsMissing   = "Error: form fields not found"
	msgEnterLogin      = "Enter login"
	msgEnterPassword   = "Enter password"
	msgLoginSuccess    = "Logged in! Redirecting..."
	msgRegisterSuccess = "Registration successful! Please log in."
	msgUnknownError    = "Unknown error"

	msgEnterTitleContent = "Enter title and description"
	msgInvalidDeadline   = "Invalid deadline"
	msgInvalidTaskID     = "Invalid task id"
	msgLoadFailed        = "Failed to load tasks"
	msgNoTasks           = "No tasks"
	msgTaskCreated       = "Task created!"
	msgTaskUpdated       = "Task updated!"
	msgTaskDeleted       = "Task deleted!"
	msgTaskCompleted     = "Task completed!"

	msgUntitled      = "Untitled"
	msgNoDescription = "No description"
	msgNoDeadline    = "No deadline"
	msgDone          = "Completed"
	msgNotDone       = "Not completed"
)

// Prefixes for remote failures in the task flows.
const (
	prefixGeneric  = "Error: "
	prefixFetch    = "Error fetching task: "
	prefixCreate   = "Create error: "
	prefixUpdate   = "Update error: "
	prefixDelete   = "Delete error: "
	prefixComplete = "Completion error: "
)

// loginErrors and registerErrors translate known server messages. Anything
// else falls back to the generic prefix.
var (
	loginErrors = map[string]string{
		rpc.MsgInvalidCredentials: "Invalid login or password",
	}
	registerErrors = map[string]string{
		rpc.MsgUserExists: "User already exists",
	}
)

func translate(known map[string]string, msg string) string {
	if text, ok := known[msg]; ok {
		return text
	}
	return prefixGeneric + msg
}

func statusText(done bool) string {
	if done {
		return msgDone
	}
	return msgNotDone
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
