package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintsync/internal/config"
	"sprintsync/internal/service"
	"sprintsync/internal/tasklist"
)

func ptr[T any](v T) *T { return &v }

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		task service.Task
		want string
	}{
		{
			name: "plain",
			task: service.Task{ID: 12, Title: "Write docs", Status: service.StatusTodo, TotalMinutes: 30},
			want: "  #12  todo          30 min  Write docs\n",
		},
		{
			name: "assigned",
			task: service.Task{ID: 3, Title: "Fix bug", Status: service.StatusInProgress, TotalMinutes: 125, AssigneeID: ptr(int64(7))},
			want: "   #3  in_progress  125 min  Fix bug  @7\n",
		},
		{
			name: "untitled with unknown status",
			task: service.Task{ID: 1, Title: " \n ", Status: "archived"},
			want: "   #1  todo           0 min  (untitled)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.task)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatTaskDetail(t *testing.T) {
	task := service.Task{
		ID:           5,
		Title:        "Ship it",
		Description:  ptr("line one\nline two\n"),
		Status:       service.StatusReview,
		TotalMinutes: 45,
		CreatedBy:    2,
		CreatedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var buf bytes.Buffer
	FormatTaskDetail(&buf, task)

	want := "#5  Ship it\n" +
		"  status:      review (Review)\n" +
		"  time logged: 45 min\n" +
		"  assignee:    (unassigned)\n" +
		"  created by:  2\n" +
		"  created:     2025-01-02T03:04:05Z\n" +
		"  next:        done, in_progress\n" +
		"\n" +
		"  line one\n" +
		"  line two\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatCounts(t *testing.T) {
	var buf bytes.Buffer
	FormatCounts(&buf, tasklist.Counts{Todo: 2, InProgress: 1, Done: 1})
	assert.Equal(t, "To Do        2\nIn Progress  1\nReview       0\nDone         1\n", buf.String())
}

func TestFormatUser(t *testing.T) {
	var buf bytes.Buffer
	FormatUser(&buf, service.User{ID: 1, Username: "ana", Email: "ana@example.com", IsAdmin: true})
	assert.Equal(t, "    1  ana                   ana@example.com  [admin]\n", buf.String())
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	FormatTopUsers(&buf, service.TopUsersReport{
		PeriodDays: 7,
		TopUsers:   []service.UserMinutes{{UserID: 1, Username: "ana", TotalMinutes: 90, TaskCount: 3}},
	})
	assert.Equal(t, "Top users (last 7 days)\n  1. ana                    90 min  3 tasks\n", buf.String())

	buf.Reset()
	FormatTopUsers(&buf, service.TopUsersReport{PeriodDays: 30})
	assert.Equal(t, "Top users (last 30 days)\n  (no time logged)\n", buf.String())

	buf.Reset()
	FormatCycleTime(&buf, []service.StatusCycle{{Status: service.StatusInProgress, TaskCount: 2, AvgMinutes: 37.5}})
	assert.Equal(t, "Cycle time by status\n  In Progress     2 tasks  avg 37.5 min\n", buf.String())
}

func TestStructured(t *testing.T) {
	task := service.Task{ID: 1, Title: "a", Status: service.StatusTodo}

	var buf bytes.Buffer
	ok, err := Structured(&buf, config.OutputText, task)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, buf.String())

	ok, err = Structured(&buf, config.OutputJSON, task)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), `"title": "a"`)
	assert.Contains(t, buf.String(), `"description": null`)

	buf.Reset()
	ok, err = Structured(&buf, config.OutputYAML, task)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, buf.String(), "title: a\n")
	assert.Contains(t, buf.String(), "status: todo\n")
	assert.False(t, strings.Contains(buf.String(), "description"), "nil description is omitted in yaml")
}
