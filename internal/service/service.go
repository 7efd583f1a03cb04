// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for SprintSync backend operations.
// All HTTP calls go through this interface.
// Commands never build requests directly.
type Service interface {
	// ListTasks returns tasks matching the filter, in server order.
	ListTasks(ctx context.Context, filter ListFilter) (TaskPage, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, fields TaskFields) (Task, error)

	// UpdateTask edits title, description, assignee or minutes.
	UpdateTask(ctx context.Context, id int64, fields TaskFields) (Task, error)

	// SetStatus asks the server to move a task to a new status.
	// The server is authoritative; it may still reject the move.
	SetStatus(ctx context.Context, id int64, status Status) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error

	// LogTime adds minutes to a task.
	LogTime(ctx context.Context, id int64, minutes int) (Task, error)

	// Suggest requests AI-generated text. titleHint is required for
	// SuggestDescription and ignored otherwise.
	Suggest(ctx context.Context, kind SuggestKind, titleHint string) (Suggestion, error)

	// ListUsers returns all users with their details. Admin only.
	ListUsers(ctx context.Context) ([]User, error)

	// UserDirectory returns every user's id and name, ordered by name.
	// Any logged-in user may call it.
	UserDirectory(ctx context.Context) ([]UserRef, error)

	// Login authenticates with username and password.
	Login(ctx context.Context, username, password string) (AuthResult, error)

	// Register creates an account and returns its session.
	Register(ctx context.Context, username, email, password string) (AuthResult, error)

	// Me returns the identity behind the current token.
	Me(ctx context.Context) (User, error)

	// TopUsers ranks users by logged minutes.
	TopUsers(ctx context.Context, days, limit int) (TopUsersReport, error)

	// CycleTime returns task counts and average minutes per status.
	CycleTime(ctx context.Context) ([]StatusCycle, error)
}
