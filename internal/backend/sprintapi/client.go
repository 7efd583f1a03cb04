// Package sprintapi implements the service.Service interface over the
// SprintSync REST API.
package sprintapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sprintsync/internal/config"
	"sprintsync/internal/logging"
	"sprintsync/internal/service"
	"sprintsync/internal/session"
)

// APITimeout is the timeout for API calls when none is configured.
const APITimeout = config.DefaultTimeout

// Client implements service.Service over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	session *session.Manager
	log     *zap.Logger
	timeout time.Duration
}

// New creates a client for cfg.APIURL. Every request goes through sess for
// its credential and every 401 is reported back to it.
func New(cfg *config.Config, sess *session.Manager, log *zap.Logger) (*Client, error) {
	return NewWithHTTPClient(cfg, sess, log, &http.Client{})
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(cfg *config.Config, sess *session.Manager, log *zap.Logger, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.APIURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", cfg.APIURL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	return &Client{
		base:    base,
		http:    httpClient,
		session: sess,
		log:     log,
		timeout: timeout,
	}, nil
}

// call describes one request.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// public endpoints (login, register) run without a token and report
	// 401 as a plain request failure.
	public bool
}

// do issues c and decodes a successful body into out (if non-nil).
func (cl *Client) do(ctx context.Context, c call, out any) error {
	if !c.public && !cl.session.HasToken() {
		return service.ErrNotLoggedIn
	}

	ctx, cancel := context.WithTimeout(ctx, cl.timeout)
	defer cancel()

	reqID := uuid.NewString()
	ctx = logging.ContextWithRequestID(ctx, reqID)
	log := logging.WithRequestID(ctx, cl.log)

	req, err := cl.newRequest(ctx, c)
	if err != nil {
		return err
	}
	req.Header.Set("X-Request-ID", reqID)
	cl.session.AttachAuth(req)

	start := time.Now()
	resp, err := cl.http.Do(req)
	if err != nil {
		log.Debug("request failed", zap.String("method", c.method), zap.String("path", c.path), zap.Error(err))
		return wrapError(err)
	}
	defer resp.Body.Close()

	log.Debug("request",
		zap.String("method", c.method),
		zap.String("path", c.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return cl.classify(resp, c.public, out)
}

func (cl *Client) newRequest(ctx context.Context, c call) (*http.Request, error) {
	u := *cl.base
	u.Path = cl.base.Path + c.path
	if len(c.query) > 0 {
		u.RawQuery = c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		data, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// classify maps a response onto the error taxonomy and decodes success bodies.
func (cl *Client) classify(resp *http.Response, public bool, out any) error {
	data, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		cl.session.OnUnauthorized()
		if public {
			return &service.RequestFailed{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
		}
		return service.ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &service.RequestFailed{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
	}

	if readErr != nil {
		return &service.RequestFailed{Status: resp.StatusCode, Message: "malformed response"}
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &service.RequestFailed{Status: resp.StatusCode, Message: "malformed response"}
	}
	return nil
}

// errorMessage extracts the server's "detail" field. FastAPI sends either a
// string or a list of validation errors with a "msg" each.
func errorMessage(status int, data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "request failed"
	}

	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil && s != "" {
			return s
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 && list[0].Msg != "" {
			return list[0].Msg
		}
	}
	return "HTTP " + strconv.Itoa(status)
}

// wrapError turns transport errors into RequestFailed with a readable message.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &service.RequestFailed{Message: "request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &service.RequestFailed{Message: "request cancelled"}
	}
	return &service.RequestFailed{Message: fmt.Sprintf("network error: %v", err)}
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// ListTasks implements service.Service.
func (cl *Client) ListTasks(ctx context.Context, filter service.ListFilter) (service.TaskPage, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.AssigneeID != nil {
		q.Set("assignee_id", strconv.FormatInt(*filter.AssigneeID, 10))
	}

	var page service.TaskPage
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/tasks/", query: q}, &page); err != nil {
		return service.TaskPage{}, err
	}
	if page.Tasks == nil {
		page.Tasks = []service.Task{}
	}
	return page, nil
}

// GetTask implements service.Service.
func (cl *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var t service.Task
	err := cl.do(ctx, call{method: http.MethodGet, path: taskPath(id)}, &t)
	return t, err
}

// CreateTask implements service.Service.
func (cl *Client) CreateTask(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	var t service.Task
	err := cl.do(ctx, call{method: http.MethodPost, path: "/tasks/", body: fields}, &t)
	return t, err
}

// UpdateTask implements service.Service.
func (cl *Client) UpdateTask(ctx context.Context, id int64, fields service.TaskFields) (service.Task, error) {
	var t service.Task
	err := cl.do(ctx, call{method: http.MethodPut, path: taskPath(id), body: fields}, &t)
	return t, err
}

// SetStatus implements service.Service.
func (cl *Client) SetStatus(ctx context.Context, id int64, status service.Status) (service.Task, error) {
	var t service.Task
	body := map[string]service.Status{"status": status}
	err := cl.do(ctx, call{method: http.MethodPatch, path: taskPath(id) + "/status", body: body}, &t)
	return t, err
}

// DeleteTask implements service.Service.
func (cl *Client) DeleteTask(ctx context.Context, id int64) error {
	return cl.do(ctx, call{method: http.MethodDelete, path: taskPath(id)}, nil)
}

// LogTime implements service.Service.
func (cl *Client) LogTime(ctx context.Context, id int64, minutes int) (service.Task, error) {
	var t service.Task
	body := map[string]int{"minutes": minutes}
	err := cl.do(ctx, call{method: http.MethodPost, path: taskPath(id) + "/log-time", body: body}, &t)
	return t, err
}

// Suggest implements service.Service.
func (cl *Client) Suggest(ctx context.Context, kind service.SuggestKind, titleHint string) (service.Suggestion, error) {
	body := map[string]string{"type": string(kind)}
	if titleHint != "" {
		body["title"] = titleHint
	}

	var s service.Suggestion
	err := cl.do(ctx, call{method: http.MethodPost, path: "/ai/suggest", body: body}, &s)
	return s, err
}

// ListUsers implements service.Service.
func (cl *Client) ListUsers(ctx context.Context) ([]service.User, error) {
	var users []service.User
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/users/"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserDirectory implements service.Service.
func (cl *Client) UserDirectory(ctx context.Context) ([]service.UserRef, error) {
	var users []service.UserRef
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/users/directory"}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Login implements service.Service. It does not touch the session; the
// caller decides whether to keep the returned token.
func (cl *Client) Login(ctx context.Context, username, password string) (service.AuthResult, error) {
	body := map[string]string{"username": username, "password": password}

	var res service.AuthResult
	err := cl.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: body, public: true}, &res)
	return res, err
}

// Register implements service.Service.
func (cl *Client) Register(ctx context.Context, username, email, password string) (service.AuthResult, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var res service.AuthResult
	err := cl.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: body, public: true}, &res)
	return res, err
}

// Me implements service.Service.
func (cl *Client) Me(ctx context.Context) (service.User, error) {
	var u service.User
	err := cl.do(ctx, call{method: http.MethodGet, path: "/auth/me"}, &u)
	return u, err
}

// TopUsers implements service.Service.
func (cl *Client) TopUsers(ctx context.Context, days, limit int) (service.TopUsersReport, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var r service.TopUsersReport
	err := cl.do(ctx, call{method: http.MethodGet, path: "/stats/top-users", query: q}, &r)
	return r, err
}

// CycleTime implements service.Service.
func (cl *Client) CycleTime(ctx context.Context) ([]service.StatusCycle, error) {
	var body struct {
		CycleTimeByStatus []service.StatusCycle `json:"cycle_time_by_status"`
	}
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/stats/cycle-time"}, &body); err != nil {
		return nil, err
	}
	return body.CycleTimeByStatus, nil
}

// Compile-time check that Client implements service.Service.
var _ service.Service = (*Client)(nil)
