// Package tasklist holds the client's view of the task list and keeps it in
// step with the server after every mutation.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sprintsync/internal/service"
	"sprintsync/internal/workflow"
)

// ErrSuperseded is returned by a load whose response arrived after the
// filter changed or after a newer load was applied. Its result was dropped.
var ErrSuperseded = errors.New("task list load superseded")

// Filter is the active list facet. An empty Status means all tasks.
type Filter struct {
	Status     service.Status
	AssigneeID *int64
}

func (f Filter) equal(o Filter) bool {
	if f.Status != o.Status {
		return false
	}
	if f.AssigneeID == nil || o.AssigneeID == nil {
		return f.AssigneeID == nil && o.AssigneeID == nil
	}
	return *f.AssigneeID == *o.AssigneeID
}

func (f Filter) listFilter() service.ListFilter {
	return service.ListFilter{Status: f.Status, AssigneeID: f.AssigneeID}
}

// View is one consistent snapshot of the loaded list.
type View struct {
	Items  []service.Task
	Total  int
	Filter Filter
	Loaded bool
}

// Counts is the number of loaded tasks in each status.
type Counts struct {
	Todo       int `json:"todo" yaml:"todo"`
	InProgress int `json:"in_progress" yaml:"in_progress"`
	Review     int `json:"review" yaml:"review"`
	Done       int `json:"done" yaml:"done"`
}

// Coordinator owns the working set of tasks for the current filter.
// It never patches items locally: every successful mutation is followed by
// a re-fetch, and the server's answer replaces the view.
type Coordinator struct {
	svc service.Service
	log *zap.Logger

	mu       sync.Mutex
	filter   Filter
	view     View
	issued   uint64 // sequence of the most recently issued load
	accepted uint64 // sequence of the most recently applied load
}

// New creates a Coordinator with no filter and an empty view.
func New(svc service.Service, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{svc: svc, log: log}
}

// SetFilter switches the active filter and reloads. If the load fails the
// previous filter and view stay in place.
func (c *Coordinator) SetFilter(ctx context.Context, f Filter) error {
	if f.Status != "" && !f.Status.Valid() {
		return service.Rejectf("invalid status filter: %q", string(f.Status))
	}
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	return c.load(ctx)
}

// Refresh re-fetches the list for the current filter.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.load(ctx)
}

// load fetches the list and applies it only if it is still the newest
// answer for the current filter. On error the previous view is kept.
func (c *Coordinator) load(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	f := c.filter
	c.mu.Unlock()

	page, err := c.svc.ListTasks(ctx, f.listFilter())

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		// The newest load failed: fall back to the filter the view was
		// loaded with, so Filter and View agree.
		if seq == c.issued {
			c.filter = c.view.Filter
		}
		return err
	}
	if !f.equal(c.filter) || seq <= c.accepted {
		c.log.Debug("discarding stale task list",
			zap.Uint64("seq", seq),
			zap.Uint64("accepted", c.accepted),
			zap.String("filter", string(f.Status)),
			zap.String("current", string(c.filter.Status)),
		)
		return ErrSuperseded
	}

	items := make([]service.Task, len(page.Tasks))
	copy(items, page.Tasks)
	c.view = View{Items: items, Total: page.Total, Filter: f, Loaded: true}
	c.accepted = seq
	return nil
}

// View returns a copy of the current view.
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view
	v.Items = make([]service.Task, len(c.view.Items))
	copy(v.Items, c.view.Items)
	return v
}

// Items returns a copy of the loaded tasks in server order.
func (c *Coordinator) Items() []service.Task {
	return c.View().Items
}

// Total returns the server-reported total for the loaded filter.
func (c *Coordinator) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Total
}

// Filter returns the active filter: the one being loaded while a load is
// in flight, otherwise the one the view was loaded with.
func (c *Coordinator) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Counts partitions the loaded items by status. With a filter active this
// reflects only the filtered subset, not every task on the server.
// Tasks with an unknown status are not counted.
func (c *Coordinator) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n Counts
	for _, t := range c.view.Items {
		switch t.Status {
		case service.StatusTodo:
			n.Todo++
		case service.StatusInProgress:
			n.InProgress++
		case service.StatusReview:
			n.Review++
		case service.StatusDone:
			n.Done++
		}
	}
	return n
}

// Find returns a loaded task by id.
func (c *Coordinator) Find(id int64) (service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.view.Items {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Create validates and creates a task, then refreshes.
func (c *Coordinator) Create(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	if err := workflow.ValidateFields(fields, true); err != nil {
		return service.Task{}, err
	}
	t, err := c.svc.CreateTask(ctx, fields)
	if err != nil {
		return service.Task{}, err
	}
	return t, c.afterMutation(ctx, "create")
}

// Edit validates and applies a free-form edit, then refreshes.
func (c *Coordinator) Edit(ctx context.Context, id int64, fields service.TaskFields) (service.Task, error) {
	if err := workflow.ValidateFields(fields, false); err != nil {
		return service.Task{}, err
	}
	t, err := c.svc.UpdateTask(ctx, id, fields)
	if err != nil {
		return service.Task{}, err
	}
	return t, c.afterMutation(ctx, "edit")
}

// Move requests a status change. The move is checked against the workflow
// using the task's current status before anything is sent.
func (c *Coordinator) Move(ctx context.Context, id int64, to service.Status) (service.Task, error) {
	current, ok := c.Find(id)
	if !ok {
		var err error
		current, err = c.svc.GetTask(ctx, id)
		if err != nil {
			return service.Task{}, err
		}
	}

	if err := workflow.CheckTransition(current.Status, to); err != nil {
		return service.Task{}, err
	}

	t, err := c.svc.SetStatus(ctx, id, to)
	if err != nil {
		return service.Task{}, err
	}
	return t, c.afterMutation(ctx, "move")
}

// Delete removes a task. Callers must have obtained the user's consent.
func (c *Coordinator) Delete(ctx context.Context, id int64) error {
	if err := c.svc.DeleteTask(ctx, id); err != nil {
		return err
	}
	return c.afterMutation(ctx, "delete")
}

// LogTime adds minutes to a task, then refreshes. The refreshed total comes
// from the server; nothing is added up locally.
func (c *Coordinator) LogTime(ctx context.Context, id int64, minutes int) (service.Task, error) {
	if err := workflow.ValidateLogTime(minutes); err != nil {
		return service.Task{}, err
	}
	t, err := c.svc.LogTime(ctx, id, minutes)
	if err != nil {
		return service.Task{}, err
	}
	return t, c.afterMutation(ctx, "log-time")
}

// afterMutation refreshes after a confirmed mutation. A superseded refresh
// is not an error: a newer load already owns the view.
func (c *Coordinator) afterMutation(ctx context.Context, op string) error {
	err := c.Refresh(ctx)
	if err == nil || errors.Is(err, ErrSuperseded) {
		return nil
	}
	return &RefreshError{Op: op, Err: err}
}

// RefreshError reports that a mutation succeeded on the server but the
// follow-up refresh failed. The previous view is still in place.
type RefreshError struct {
	Op  string
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s succeeded but refresh failed: %v", e.Op, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }
