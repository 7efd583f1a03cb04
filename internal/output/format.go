// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sprintsync/internal/config"
	"sprintsync/internal/service"
	"sprintsync/internal/tasklist"
	"sprintsync/internal/workflow"
)

// FormatTask formats a task line for the task list.
// Format: "{#ID:>5}  {STATUS:<11}  {MIN:>7}  {TITLE}[  @ASSIGNEE]\n"
func FormatTask(w io.Writer, task service.Task) {
	line := fmt.Sprintf("%5s  %-11s  %7s  %s",
		"#"+fmt.Sprint(task.ID),
		task.Status.Display(),
		FormatMinutes(task.TotalMinutes),
		normalizeTitle(task.Title),
	)
	if task.AssigneeID != nil {
		line += fmt.Sprintf("  @%d", *task.AssigneeID)
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail formats every field of a task plus the moves it allows.
func FormatTaskDetail(w io.Writer, task service.Task) {
	status := task.Status.Display()
	fmt.Fprintf(w, "#%d  %s\n", task.ID, normalizeTitle(task.Title))
	fmt.Fprintf(w, "  status:      %s (%s)\n", status, workflow.Label(status))
	fmt.Fprintf(w, "  time logged: %s\n", FormatMinutes(task.TotalMinutes))
	if task.AssigneeID != nil {
		fmt.Fprintf(w, "  assignee:    %d\n", *task.AssigneeID)
	} else {
		fmt.Fprintln(w, "  assignee:    (unassigned)")
	}
	if task.CreatedBy != 0 {
		fmt.Fprintf(w, "  created by:  %d\n", task.CreatedBy)
	}
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "  created:     %s\n", task.CreatedAt.Format(time.RFC3339))
	}
	if !task.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "  updated:     %s\n", task.UpdatedAt.Format(time.RFC3339))
	}

	next := workflow.AllowedTransitions(task.Status)
	if len(next) > 0 {
		names := make([]string, len(next))
		for i, s := range next {
			names[i] = string(s)
		}
		fmt.Fprintf(w, "  next:        %s\n", strings.Join(names, ", "))
	}

	if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
		fmt.Fprintln(w)
		for _, l := range strings.Split(strings.TrimRight(*task.Description, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
}

// FormatCounts formats per-status counts in board order.
func FormatCounts(w io.Writer, c tasklist.Counts) {
	fmt.Fprintf(w, "%-12s %d\n", workflow.Label(service.StatusTodo), c.Todo)
	fmt.Fprintf(w, "%-12s %d\n", workflow.Label(service.StatusInProgress), c.InProgress)
	fmt.Fprintf(w, "%-12s %d\n", workflow.Label(service.StatusReview), c.Review)
	fmt.Fprintf(w, "%-12s %d\n", workflow.Label(service.StatusDone), c.Done)
}

// FormatUser formats a user line.
func FormatUser(w io.Writer, u service.User) {
	line := fmt.Sprintf("%5d  %-20s  %s", u.ID, u.Username, u.Email)
	if u.IsAdmin {
		line += "  [admin]"
	}
	fmt.Fprintln(w, line)
}

// FormatUserRef formats a user directory line.
func FormatUserRef(w io.Writer, u service.UserRef) {
	fmt.Fprintf(w, "%5d  %s\n", u.ID, u.Username)
}

// FormatTopUsers formats the top-users report.
func FormatTopUsers(w io.Writer, r service.TopUsersReport) {
	fmt.Fprintf(w, "Top users (last %d days)\n", r.PeriodDays)
	if len(r.TopUsers) == 0 {
		fmt.Fprintln(w, "  (no time logged)")
		return
	}
	for i, u := range r.TopUsers {
		fmt.Fprintf(w, "%3d. %-20s %8s  %d tasks\n", i+1, u.Username, FormatMinutes(u.TotalMinutes), u.TaskCount)
	}
}

// FormatCycleTime formats average minutes per status.
func FormatCycleTime(w io.Writer, cycles []service.StatusCycle) {
	fmt.Fprintln(w, "Cycle time by status")
	for _, c := range cycles {
		fmt.Fprintf(w, "  %-12s %4d tasks  avg %.1f min\n", workflow.Label(c.Status), c.TaskCount, c.AvgMinutes)
	}
}

// FormatMinutes formats a logged-time total.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%d min", minutes)
}

// Structured writes v as JSON or YAML according to format.
// It returns false for the text format so the caller prints text itself.
func Structured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case config.OutputJSON:
		return true, WriteJSON(w, v)
	case config.OutputYAML:
		return true, WriteYAML(w, v)
	}
	return false, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
