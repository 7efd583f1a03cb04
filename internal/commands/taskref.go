package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task id required")

// ParseTaskRef parses the task id at the front of args and returns the
// remaining arguments.
//
// Accepted forms: "12" and "#12". Ids are server-assigned and positive.
func ParseTaskRef(args []string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrTaskRefRequired
	}

	ref := strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	if ref == "" || !isAllDigits(ref) {
		return 0, nil, fmt.Errorf("invalid task id: %s", args[0])
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id < 1 {
		return 0, nil, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, args[1:], nil
}

// isAllDigits returns true if s contains only ASCII digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
