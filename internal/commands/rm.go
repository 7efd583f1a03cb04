package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/tasklist"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "sprintsync rm [--force] <id>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVarP(&c.force, "force", "f", false, "")
}

func (c *RmCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskRef(args)
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if len(rest) > 0 {
		return usageError(errOut, "unexpected argument: %s", rest[0])
	}

	// Deleting is irreversible; ask unless --force.
	if !c.force {
		if rt.Prompter == nil {
			return usageError(errOut, "refusing to delete without confirmation (use --force)")
		}
		yes, err := rt.Prompter.Confirm(fmt.Sprintf("Delete task #%d?", id))
		if err != nil {
			return reportError(errOut, err)
		}
		if !yes {
			if !rt.quiet() {
				fmt.Fprintln(out, "cancelled")
			}
			return exitcode.Success
		}
	}

	err = rt.Tasks().Delete(ctx, id)
	var refreshErr *tasklist.RefreshError
	if err != nil && !errors.As(err, &refreshErr) {
		return reportError(errOut, err)
	}

	if !rt.quiet() {
		fmt.Fprintln(out, "ok")
	}
	if err != nil {
		return reportError(errOut, err)
	}
	return exitcode.Success
}
