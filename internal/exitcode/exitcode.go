// Package exitcode defines the sprintsync process exit codes.
package exitcode

import "net/http"

const (
	// Success indicates successful completion.
	Success = 0

	// UserError covers bad arguments, rejected workflow moves and 4xx answers.
	UserError = 1

	// AuthError means there is no usable session: not logged in, expired,
	// or credentials refused.
	AuthError = 2

	// BackendError covers 5xx answers and transport failures.
	BackendError = 3
)

// ForHTTPStatus maps a failed response status onto an exit code.
// Status 0 means the request never got an answer.
func ForHTTPStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized:
		return AuthError
	case status >= 400 && status < 500:
		return UserError
	default:
		return BackendError
	}
}
