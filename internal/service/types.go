// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// Status is a task workflow state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists every workflow state in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

// Valid reports whether s is one of the four workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Display returns s, or StatusTodo when s is unknown or missing.
// Only for presentation; never send the result back to the server.
func (s Status) Display() Status {
	if s.Valid() {
		return s
	}
	return StatusTodo
}

// ParseStatus parses a user-supplied status name.
// Accepts the wire names plus "in-progress" and "inprogress".
func ParseStatus(name string) (Status, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	if n == "inprogress" {
		n = string(StatusInProgress)
	}
	s := Status(n)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status: %s", name)
	}
	return s, nil
}

// Task represents a single task item as returned by the server.
type Task struct {
	ID           int64     `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  *string   `json:"description" yaml:"description,omitempty"`
	Status       Status    `json:"status" yaml:"status"`
	TotalMinutes int       `json:"total_minutes" yaml:"total_minutes"`
	AssigneeID   *int64    `json:"assignee_id" yaml:"assignee_id,omitempty"`
	CreatedBy    int64     `json:"created_by" yaml:"created_by"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// TaskFields is the request body for create and update.
// Nil optional fields are omitted from the request.
type TaskFields struct {
	Title        string  `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	TotalMinutes *int    `json:"total_minutes,omitempty"`
	AssigneeID   *int64  `json:"assignee_id,omitempty"`
}

// ListFilter narrows ListTasks. Zero values mean "no filter".
type ListFilter struct {
	Status     Status
	AssigneeID *int64
}

// TaskPage is a list response.
type TaskPage struct {
	Tasks []Task `json:"tasks" yaml:"tasks"`
	Total int    `json:"total" yaml:"total"`
}

// User is a SprintSync account.
type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Username  string    `json:"username" yaml:"username"`
	Email     string    `json:"email" yaml:"email"`
	IsAdmin   bool      `json:"is_admin" yaml:"is_admin"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// UserRef is a directory entry: enough to pick an assignee.
type UserRef struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// SuggestKind selects what the AI suggestion endpoint generates.
type SuggestKind string

const (
	SuggestDescription SuggestKind = "description"
	SuggestDailyPlan   SuggestKind = "daily_plan"
)

// Suggestion is an AI suggestion response.
type Suggestion struct {
	Type       string `json:"type" yaml:"type"`
	Suggestion string `json:"suggestion" yaml:"suggestion"`
	IsStub     bool   `json:"is_stub" yaml:"is_stub"`
	Warning    string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// UserMinutes is one row of the top-users report.
type UserMinutes struct {
	UserID       int64  `json:"user_id" yaml:"user_id"`
	Username     string `json:"username" yaml:"username"`
	TotalMinutes int    `json:"total_minutes" yaml:"total_minutes"`
	TaskCount    int    `json:"task_count" yaml:"task_count"`
}

// TopUsersReport ranks users by logged minutes.
type TopUsersReport struct {
	PeriodDays int           `json:"period_days" yaml:"period_days"`
	TopUsers   []UserMinutes `json:"top_users" yaml:"top_users"`
}

// StatusCycle is the per-status task count and average logged minutes.
type StatusCycle struct {
	Status     Status  `json:"status" yaml:"status"`
	TaskCount  int     `json:"task_count" yaml:"task_count"`
	AvgMinutes float64 `json:"avg_minutes" yaml:"avg_minutes"`
}
