package tasklist

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintsync/internal/service"
	"sprintsync/internal/testutil"
)

func seeded(t *testing.T) *testutil.FakeService {
	t.Helper()
	f := testutil.NewFakeService()
	f.AddTask(service.Task{ID: 1, Title: "a", Status: service.StatusTodo})
	f.AddTask(service.Task{ID: 2, Title: "b", Status: service.StatusTodo})
	f.AddTask(service.Task{ID: 3, Title: "c", Status: service.StatusInProgress})
	f.AddTask(service.Task{ID: 4, Title: "d", Status: service.StatusDone})
	return f
}

func TestCounts(t *testing.T) {
	c := New(seeded(t), nil)
	require.NoError(t, c.Refresh(context.Background()))

	want := Counts{Todo: 2, InProgress: 1, Review: 0, Done: 1}
	if diff := cmp.Diff(want, c.Counts()); diff != "" {
		t.Errorf("Counts() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, c.Total())
}

func TestCounts_FilteredSubsetOnly(t *testing.T) {
	c := New(seeded(t), nil)
	require.NoError(t, c.SetFilter(context.Background(), Filter{Status: service.StatusTodo}))

	assert.Equal(t, Counts{Todo: 2}, c.Counts())
	assert.Len(t, c.Items(), 2)
}

func TestCounts_IgnoresUnknownStatus(t *testing.T) {
	f := testutil.NewFakeService()
	f.AddTask(service.Task{ID: 1, Title: "a", Status: "archived"})
	f.AddTask(service.Task{ID: 2, Title: "b", Status: service.StatusReview})

	c := New(f, nil)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, Counts{Review: 1}, c.Counts())
	assert.Len(t, c.Items(), 2, "unknown statuses are still listed")
}

func TestSetFilter_Invalid(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)

	err := c.SetFilter(context.Background(), Filter{Status: "blocked"})
	assert.True(t, service.IsValidation(err))
	assert.Zero(t, f.Calls("ListTasks"))
}

func TestSetFilter_FailedLoadKeepsPreviousFilter(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)
	require.NoError(t, c.SetFilter(context.Background(), Filter{Status: service.StatusDone}))

	boom := &service.RequestFailed{Status: 500, Message: "boom"}
	f.Fail("ListTasks", boom)
	err := c.SetFilter(context.Background(), Filter{Status: service.StatusTodo})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, Filter{Status: service.StatusDone}, c.Filter())
	assert.Equal(t, c.Filter(), c.View().Filter)
	assert.Equal(t, Counts{Done: 1}, c.Counts())

	// A later refresh reloads the filter the view shows.
	f.Fail("ListTasks", nil)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, Filter{Status: service.StatusDone}, c.View().Filter)
	assert.Len(t, c.Items(), 1)
}

func TestMove_IllegalTransitionMakesNoCall(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)
	require.NoError(t, c.Refresh(context.Background()))
	before := f.Calls("ListTasks")

	_, err := c.Move(context.Background(), 1, service.StatusDone)

	require.Error(t, err)
	assert.True(t, service.IsValidation(err))
	assert.Contains(t, err.Error(), "cannot transition from 'todo' to 'done'")
	assert.Zero(t, f.Calls("SetStatus"))
	assert.Equal(t, before, f.Calls("ListTasks"), "no refresh after a rejected move")

	task, _ := c.Find(1)
	assert.Equal(t, service.StatusTodo, task.Status)
}

func TestMove_SameStatus(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)
	require.NoError(t, c.Refresh(context.Background()))

	_, err := c.Move(context.Background(), 3, service.StatusInProgress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in 'in_progress' status")
	assert.Zero(t, f.Calls("SetStatus"))
}

func TestMove_UsesServerWhenNotLoaded(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)

	got, err := c.Move(context.Background(), 1, service.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, service.StatusInProgress, got.Status)
	assert.Equal(t, 1, f.Calls("GetTask"))

	task, ok := c.Find(1)
	require.True(t, ok, "refresh must follow a successful move")
	assert.Equal(t, service.StatusInProgress, task.Status)
}

func TestMove_UnknownTask(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)

	_, err := c.Move(context.Background(), 99, service.StatusInProgress)
	rf, ok := service.AsRequestFailed(err)
	require.True(t, ok)
	assert.True(t, rf.IsNotFound())
	assert.Zero(t, f.Calls("SetStatus"))
}

func TestLogTime_ShowsServerTotal(t *testing.T) {
	f := testutil.NewFakeService()
	f.AddTask(service.Task{ID: 1, Title: "a", Status: service.StatusTodo, TotalMinutes: 10})
	c := New(f, nil)
	require.NoError(t, c.Refresh(context.Background()))

	// The server answers with its own view of the total, which is not
	// necessarily the local sum.
	f.LogTimeHook = func(task *service.Task, minutes int) { task.TotalMinutes = 40 }

	got, err := c.LogTime(context.Background(), 1, 15)
	require.NoError(t, err)
	assert.Equal(t, 40, got.TotalMinutes)

	task, ok := c.Find(1)
	require.True(t, ok)
	assert.Equal(t, 40, task.TotalMinutes)
}

func TestLogTime_RejectsNonPositive(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)

	for _, m := range []int{0, -5} {
		_, err := c.LogTime(context.Background(), 1, m)
		assert.True(t, service.IsValidation(err), "minutes=%d", m)
	}
	assert.Zero(t, f.Calls("LogTime"))
}

func TestCreate_ValidatesBeforeSending(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)

	_, err := c.Create(context.Background(), service.TaskFields{Title: "   "})
	assert.True(t, service.IsValidation(err))
	assert.Zero(t, f.Calls("CreateTask"))
}

func TestCreate_Refreshes(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)
	require.NoError(t, c.Refresh(context.Background()))

	created, err := c.Create(context.Background(), service.TaskFields{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, service.StatusTodo, created.Status)

	_, ok := c.Find(created.ID)
	assert.True(t, ok)
	assert.Equal(t, 5, c.Total())
}

func TestFailedMutationLeavesViewUnchanged(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.View()

	f.Fail("DeleteTask", &service.RequestFailed{Status: 403, Message: "Not enough permissions"})
	err := c.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "Not enough permissions (HTTP 403)", err.Error())

	if diff := cmp.Diff(before, c.View()); diff != "" {
		t.Errorf("view changed after failed delete (-before +after):\n%s", diff)
	}
}

func TestFailedRefreshKeepsPreviousView(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.View()

	f.Fail("ListTasks", &service.RequestFailed{Message: "request timed out"})
	err := c.Delete(context.Background(), 1)

	var rerr *RefreshError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "delete", rerr.Op)

	if diff := cmp.Diff(before, c.View()); diff != "" {
		t.Errorf("view changed after failed refresh (-before +after):\n%s", diff)
	}
}

func TestSessionExpiredPropagates(t *testing.T) {
	f := seeded(t)
	f.Fail("ListTasks", service.ErrSessionExpired)
	c := New(f, nil)

	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, service.ErrSessionExpired)
	assert.False(t, c.View().Loaded)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)

	release := make(chan struct{})
	entered := make(chan struct{})
	f.ListTasksHook = func(filter service.ListFilter) {
		if filter.Status == service.StatusTodo {
			close(entered)
			<-release
		}
	}

	errc := make(chan error, 1)
	go func() {
		errc <- c.SetFilter(context.Background(), Filter{Status: service.StatusTodo})
	}()
	<-entered

	// The user switches filters while the "todo" load is in flight.
	require.NoError(t, c.SetFilter(context.Background(), Filter{Status: service.StatusDone}))
	close(release)

	assert.ErrorIs(t, <-errc, ErrSuperseded)

	v := c.View()
	assert.Equal(t, service.StatusDone, v.Filter.Status)
	require.Len(t, v.Items, 1)
	assert.Equal(t, int64(4), v.Items[0].ID)
	assert.Equal(t, 1, v.Total)
}

func TestOlderLoadForSameFilterIsDiscarded(t *testing.T) {
	f := seeded(t)
	c := New(f, nil)

	release := make(chan struct{})
	entered := make(chan struct{})
	first := true
	f.ListTasksHook = func(service.ListFilter) {
		if first {
			first = false
			close(entered)
			<-release
		}
	}

	errc := make(chan error, 1)
	go func() { errc <- c.Refresh(context.Background()) }()
	<-entered

	f.AddTask(service.Task{ID: 5, Title: "e", Status: service.StatusReview})
	require.NoError(t, c.Refresh(context.Background()))
	close(release)

	assert.ErrorIs(t, <-errc, ErrSuperseded)
	assert.Equal(t, 5, c.Total(), "newer answer must win")
}
