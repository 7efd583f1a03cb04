// Package workflow defines the task status state machine and the field
// rules a task must satisfy before it is sent to the server.
package workflow

import (
	"strings"
	"unicode/utf8"

	"sprintsync/internal/service"
)

// MaxTitleLength is the longest title the server accepts, in characters.
const MaxTitleLength = 200

// transitions is the single-step transition table.
// Order matters: it is the order actions are offered in.
var transitions = map[service.Status][]service.Status{
	service.StatusTodo:       {service.StatusInProgress},
	service.StatusInProgress: {service.StatusReview, service.StatusTodo},
	service.StatusReview:     {service.StatusDone, service.StatusInProgress},
	service.StatusDone:       {service.StatusTodo},
}

var labels = map[service.Status]string{
	service.StatusTodo:       "To Do",
	service.StatusInProgress: "In Progress",
	service.StatusReview:     "Review",
	service.StatusDone:       "Done",
}

// AllowedTransitions returns the statuses reachable from s in one step.
// Unknown statuses have no moves; such a task can only be fixed by a direct edit.
func AllowedTransitions(s service.Status) []service.Status {
	next := transitions[s]
	out := make([]service.Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to service.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a ValidationRejected error unless from -> to is a
// legal single-step move.
func CheckTransition(from, to service.Status) error {
	if !to.Valid() {
		return service.Rejectf("invalid status: %q", string(to))
	}
	if !from.Valid() {
		return service.Rejectf("task has unknown status %q; edit it directly", string(from))
	}
	if from == to {
		return service.Rejectf("task is already in '%s' status", from)
	}
	if !CanTransition(from, to) {
		return service.Rejectf("cannot transition from '%s' to '%s' (allowed: %s)", from, to, joinStatuses(transitions[from]))
	}
	return nil
}

// ValidateFields checks a create or update body. On create the title is
// mandatory; on update an empty title means "leave unchanged".
func ValidateFields(fields service.TaskFields, creating bool) error {
	title := strings.TrimSpace(fields.Title)
	if creating && title == "" {
		return service.Rejectf("title required")
	}
	if fields.Title != "" && title == "" {
		return service.Rejectf("title must not be blank")
	}
	if utf8.RuneCountInString(fields.Title) > MaxTitleLength {
		return service.Rejectf("title too long (max %d characters)", MaxTitleLength)
	}
	if fields.TotalMinutes != nil && *fields.TotalMinutes < 0 {
		return service.Rejectf("minutes must not be negative: %d", *fields.TotalMinutes)
	}
	return nil
}

// ValidateLogTime checks a time-log amount.
func ValidateLogTime(minutes int) error {
	if minutes <= 0 {
		return service.Rejectf("minutes must be positive: %d", minutes)
	}
	return nil
}

// Label returns the display label for s. Unknown statuses display as To Do.
func Label(s service.Status) string {
	return labels[s.Display()]
}

func joinStatuses(ss []service.Status) string {
	names := make([]string, len(ss))
	for i, s := range ss {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
