package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when the server rejects a request for
// authorization reasons. The session has already been cleared; callers
// must re-authenticate instead of retrying.
var ErrSessionExpired = errors.New("session expired")

// ErrNotLoggedIn is returned without contacting the server when an
// authenticated operation is attempted with no session token.
var ErrNotLoggedIn = &RequestFailed{Status: http.StatusUnauthorized, Message: "authentication required"}

// RequestFailed is any non-success response other than an authorization
// failure, including transport errors (Status 0).
type RequestFailed struct {
	Status  int
	Message string
}

func (e *RequestFailed) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsNotFound reports whether the server answered 404.
func (e *RequestFailed) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsClientError reports a 4xx status: the request itself was at fault.
func (e *RequestFailed) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// ValidationRejected is a client-side refusal, raised before any network
// call, e.g. a workflow move that is not in the transition table.
type ValidationRejected struct {
	Reason string
}

func (e *ValidationRejected) Error() string {
	return e.Reason
}

// Rejectf builds a ValidationRejected error.
func Rejectf(format string, args ...any) error {
	return &ValidationRejected{Reason: fmt.Sprintf(format, args...)}
}

// AsRequestFailed unwraps err into a RequestFailed if it is one.
func AsRequestFailed(err error) (*RequestFailed, bool) {
	var rf *RequestFailed
	if errors.As(err, &rf) {
		return rf, true
	}
	return nil, false
}

// IsValidation reports whether err is a ValidationRejected.
func IsValidation(err error) bool {
	var vr *ValidationRejected
	return errors.As(err, &vr)
}
