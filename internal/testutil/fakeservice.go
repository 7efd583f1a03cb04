// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"sprintsync/internal/service"
)

// FakeToken is the access token issued by FakeService on login and register.
const FakeToken = "fake-token"

// ErrTaskNotFound is what FakeService returns for an unknown task id.
var ErrTaskNotFound = &service.RequestFailed{Status: http.StatusNotFound, Message: "Task not found"}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu        sync.RWMutex
	tasks     []service.Task
	nextID    int64
	users     []service.User
	passwords map[string]string
	me        *service.User
	calls     map[string]int
	errs      map[string]error

	// Suggestion is returned by Suggest.
	Suggestion service.Suggestion
	// TopUsersReport and Cycles are returned by the stats calls.
	TopUsersReport service.TopUsersReport
	Cycles         []service.StatusCycle

	// ListTasksHook runs at the start of ListTasks, outside the lock.
	ListTasksHook func(filter service.ListFilter)
	// LogTimeHook runs after minutes are added, with the stored task.
	LogTimeHook func(task *service.Task, minutes int)

	now func() time.Time
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:    1,
		passwords: make(map[string]string),
		calls:     make(map[string]int),
		errs:      make(map[string]error),
		now:       func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

// AddTask stores t as-is. A zero ID is assigned the next free one.
func (f *FakeService) AddTask(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.nextID
	}
	if t.ID >= f.nextID {
		f.nextID = t.ID + 1
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = f.now()
		t.UpdatedAt = t.CreatedAt
	}
	f.tasks = append(f.tasks, t)
	return t
}

// AddUser registers an account that can log in with password.
func (f *FakeService) AddUser(u service.User, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = f.now()
	}
	f.users = append(f.users, u)
	f.passwords[u.Username] = password
}

// SetMe sets the identity returned by Me.
func (f *FakeService) SetMe(u service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.me = &u
}

// Fail makes every subsequent call to method return err. A nil err clears it.
func (f *FakeService) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, method)
		return
	}
	f.errs[method] = err
}

// Calls returns how many times method was called.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// enter records a call and returns the injected error, if any.
// Callers must hold f.mu.
func (f *FakeService) enter(method string) error {
	f.calls[method]++
	return f.errs[method]
}

func (f *FakeService) find(id int64) *service.Task {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i]
		}
	}
	return nil
}

// ListTasks implements service.Service. Newest tasks come first.
func (f *FakeService) ListTasks(ctx context.Context, filter service.ListFilter) (service.TaskPage, error) {
	f.mu.Lock()
	err := f.enter("ListTasks")
	hook := f.ListTasksHook
	f.mu.Unlock()
	if hook != nil {
		hook(filter)
	}
	if err != nil {
		return service.TaskPage{}, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	out := []service.Task{}
	for _, t := range f.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return service.TaskPage{Tasks: out, Total: len(out)}, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetTask"); err != nil {
		return service.Task{}, err
	}
	t := f.find(id)
	if t == nil {
		return service.Task{}, ErrTaskNotFound
	}
	return *t, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTask"); err != nil {
		return service.Task{}, err
	}

	t := service.Task{
		ID:          f.nextID,
		Title:       strings.TrimSpace(fields.Title),
		Description: fields.Description,
		Status:      service.StatusTodo,
		AssigneeID:  fields.AssigneeID,
		CreatedAt:   f.now(),
		UpdatedAt:   f.now(),
	}
	if fields.TotalMinutes != nil {
		t.TotalMinutes = *fields.TotalMinutes
	}
	if f.me != nil {
		t.CreatedBy = f.me.ID
	}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, fields service.TaskFields) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateTask"); err != nil {
		return service.Task{}, err
	}
	t := f.find(id)
	if t == nil {
		return service.Task{}, ErrTaskNotFound
	}
	if fields.Title != "" {
		t.Title = strings.TrimSpace(fields.Title)
	}
	if fields.Description != nil {
		t.Description = fields.Description
	}
	if fields.TotalMinutes != nil {
		t.TotalMinutes = *fields.TotalMinutes
	}
	if fields.AssigneeID != nil {
		t.AssigneeID = fields.AssigneeID
	}
	t.UpdatedAt = f.now()
	return *t, nil
}

// SetStatus implements service.Service. Like the real server it accepts
// any valid status; workflow rules are the caller's job.
func (f *FakeService) SetStatus(ctx context.Context, id int64, status service.Status) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SetStatus"); err != nil {
		return service.Task{}, err
	}
	t := f.find(id)
	if t == nil {
		return service.Task{}, ErrTaskNotFound
	}
	if !status.Valid() {
		return service.Task{}, &service.RequestFailed{Status: http.StatusUnprocessableEntity, Message: "Invalid status"}
	}
	t.Status = status
	t.UpdatedAt = f.now()
	return *t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteTask"); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}

// LogTime implements service.Service.
func (f *FakeService) LogTime(ctx context.Context, id int64, minutes int) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("LogTime"); err != nil {
		return service.Task{}, err
	}
	t := f.find(id)
	if t == nil {
		return service.Task{}, ErrTaskNotFound
	}
	t.TotalMinutes += minutes
	if f.LogTimeHook != nil {
		f.LogTimeHook(t, minutes)
	}
	t.UpdatedAt = f.now()
	return *t, nil
}

// Suggest implements service.Service.
func (f *FakeService) Suggest(ctx context.Context, kind service.SuggestKind, titleHint string) (service.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Suggest"); err != nil {
		return service.Suggestion{}, err
	}
	s := f.Suggestion
	if s.Type == "" {
		s.Type = string(kind)
	}
	return s, nil
}

// ListUsers implements service.Service. Like the server it refuses
// non-admin callers.
func (f *FakeService) ListUsers(ctx context.Context) ([]service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListUsers"); err != nil {
		return nil, err
	}
	if f.me != nil && !f.me.IsAdmin {
		return nil, &service.RequestFailed{Status: http.StatusForbidden, Message: "Admin access required"}
	}
	out := make([]service.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

// UserDirectory implements service.Service. Entries are ordered by name.
func (f *FakeService) UserDirectory(ctx context.Context) ([]service.UserRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UserDirectory"); err != nil {
		return nil, err
	}
	out := make([]service.UserRef, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, service.UserRef{ID: u.ID, Username: u.Username})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, username, password string) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Login"); err != nil {
		return service.AuthResult{}, err
	}
	pw, ok := f.passwords[username]
	if !ok || pw != password {
		return service.AuthResult{}, &service.RequestFailed{Status: http.StatusUnauthorized, Message: "Invalid username or password"}
	}
	for _, u := range f.users {
		if u.Username == username {
			f.me = &u
			return service.AuthResult{AccessToken: FakeToken, TokenType: "bearer", User: u}, nil
		}
	}
	return service.AuthResult{}, &service.RequestFailed{Status: http.StatusUnauthorized, Message: "Invalid username or password"}
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, username, email, password string) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Register"); err != nil {
		return service.AuthResult{}, err
	}
	if _, taken := f.passwords[username]; taken {
		return service.AuthResult{}, &service.RequestFailed{Status: http.StatusConflict, Message: "Username already taken"}
	}
	u := service.User{ID: int64(len(f.users) + 1), Username: username, Email: email, CreatedAt: f.now()}
	f.users = append(f.users, u)
	f.passwords[username] = password
	f.me = &u
	return service.AuthResult{AccessToken: FakeToken, TokenType: "bearer", User: u}, nil
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Me"); err != nil {
		return service.User{}, err
	}
	if f.me == nil {
		return service.User{}, service.ErrSessionExpired
	}
	return *f.me, nil
}

// TopUsers implements service.Service.
func (f *FakeService) TopUsers(ctx context.Context, days, limit int) (service.TopUsersReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("TopUsers"); err != nil {
		return service.TopUsersReport{}, err
	}
	r := f.TopUsersReport
	if r.PeriodDays == 0 {
		r.PeriodDays = days
	}
	if limit > 0 && len(r.TopUsers) > limit {
		r.TopUsers = r.TopUsers[:limit]
	}
	return r, nil
}

// CycleTime implements service.Service.
func (f *FakeService) CycleTime(ctx context.Context) ([]service.StatusCycle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CycleTime"); err != nil {
		return nil, err
	}
	return f.Cycles, nil
}

// Compile-time check that FakeService implements service.Service.
var _ service.Service = (*FakeService)(nil)
