package workflow_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sprintsync/internal/service"
	"sprintsync/internal/workflow"
)

func TestAllowedTransitions_Table(t *testing.T) {
	tests := []struct {
		from service.Status
		want []service.Status
	}{
		{service.StatusTodo, []service.Status{service.StatusInProgress}},
		{service.StatusInProgress, []service.Status{service.StatusReview, service.StatusTodo}},
		{service.StatusReview, []service.Status{service.StatusDone, service.StatusInProgress}},
		{service.StatusDone, []service.Status{service.StatusTodo}},
		{"", []service.Status{}},
		{"blocked", []service.Status{}},
		{"TODO", []service.Status{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got := workflow.AllowedTransitions(tt.from)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AllowedTransitions(%q) mismatch (-want +got):\n%s", tt.from, diff)
			}
		})
	}
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	got := workflow.AllowedTransitions(service.StatusTodo)
	got[0] = service.StatusDone

	again := workflow.AllowedTransitions(service.StatusTodo)
	if again[0] != service.StatusInProgress {
		t.Fatalf("transition table was mutated through returned slice: %v", again)
	}
}

func TestAllowedTransitions_AlwaysInClosedSet(t *testing.T) {
	for _, from := range service.Statuses {
		for _, to := range workflow.AllowedTransitions(from) {
			if !to.Valid() {
				t.Errorf("%s -> %s leaves the status set", from, to)
			}
			if err := workflow.CheckTransition(from, to); err != nil {
				t.Errorf("CheckTransition(%s, %s) = %v, want nil", from, to, err)
			}
		}
	}
}

func TestCheckTransition_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		from    service.Status
		to      service.Status
		wantMsg string
	}{
		{"skip ahead", service.StatusTodo, service.StatusDone, "cannot transition from 'todo' to 'done'"},
		{"in progress to done", service.StatusInProgress, service.StatusDone, "allowed: review, todo"},
		{"same status", service.StatusReview, service.StatusReview, "already in 'review'"},
		{"unknown source", "archived", service.StatusTodo, "unknown status"},
		{"unknown target", service.StatusTodo, "archived", "invalid status"},
		{"done to review", service.StatusDone, service.StatusReview, "cannot transition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := workflow.CheckTransition(tt.from, tt.to)
			if err == nil {
				t.Fatal("expected error")
			}
			if !service.IsValidation(err) {
				t.Errorf("expected ValidationRejected, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidateFields(t *testing.T) {
	neg := -5
	zero := 0
	long := strings.Repeat("x", workflow.MaxTitleLength+1)

	tests := []struct {
		name     string
		fields   service.TaskFields
		creating bool
		wantErr  bool
	}{
		{"create ok", service.TaskFields{Title: "Write docs"}, true, false},
		{"create zero minutes", service.TaskFields{Title: "Write docs", TotalMinutes: &zero}, true, false},
		{"create missing title", service.TaskFields{}, true, true},
		{"create blank title", service.TaskFields{Title: "   "}, true, true},
		{"update without title", service.TaskFields{TotalMinutes: &zero}, false, false},
		{"update blank title", service.TaskFields{Title: " "}, false, true},
		{"negative minutes", service.TaskFields{Title: "a", TotalMinutes: &neg}, true, true},
		{"title too long", service.TaskFields{Title: long}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := workflow.ValidateFields(tt.fields, tt.creating)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFields() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !service.IsValidation(err) {
				t.Errorf("expected ValidationRejected, got %T", err)
			}
		})
	}
}

func TestValidateLogTime(t *testing.T) {
	if err := workflow.ValidateLogTime(30); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, m := range []int{0, -1} {
		if err := workflow.ValidateLogTime(m); err == nil {
			t.Errorf("ValidateLogTime(%d) expected error", m)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := workflow.Label(service.StatusInProgress); got != "In Progress" {
		t.Errorf("Label(in_progress) = %q", got)
	}
	if got := workflow.Label("garbage"); got != "To Do" {
		t.Errorf("unknown status should display as To Do, got %q", got)
	}
}
