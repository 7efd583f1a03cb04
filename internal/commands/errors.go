package commands

import (
	"errors"
	"fmt"
	"io"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/prompt"
	"sprintsync/internal/service"
	"sprintsync/internal/tasklist"
)

// reportError prints err and returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	var refreshErr *tasklist.RefreshError
	if errors.As(err, &refreshErr) {
		fmt.Fprintf(errOut, "warning: %v\n", refreshErr)
		return classify(refreshErr.Err)
	}

	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		fmt.Fprintln(errOut, "error: not logged in (run: sprintsync login)")
	case errors.Is(err, service.ErrSessionExpired):
		fmt.Fprintln(errOut, "error: session expired (run: sprintsync login)")
	case errors.Is(err, prompt.ErrAborted):
		fmt.Fprintln(errOut, "error: aborted")
	case service.IsValidation(err):
		fmt.Fprintf(errOut, "error: %v\n", err)
	default:
		if rf, ok := service.AsRequestFailed(err); ok && rf.IsClientError() {
			fmt.Fprintf(errOut, "error: %v\n", err)
		} else {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		}
	}
	return classify(err)
}

// classify maps err onto an exit code.
func classify(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, service.ErrNotLoggedIn), errors.Is(err, service.ErrSessionExpired):
		return exitcode.AuthError
	case errors.Is(err, prompt.ErrAborted), service.IsValidation(err):
		return exitcode.UserError
	}

	if rf, ok := service.AsRequestFailed(err); ok {
		return exitcode.ForHTTPStatus(rf.Status)
	}
	return exitcode.BackendError
}

// usageError prints a user error and returns exitcode.UserError.
func usageError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}
