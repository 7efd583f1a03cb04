package commands

import (
	"context"
	"io"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/service"
)

func init() {
	Register(&MoveCmd{})
	Register(&DoneCmd{})
}

// MoveCmd implements the move command.
type MoveCmd struct{}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task to another status" }
func (c *MoveCmd) Usage() string {
	return "sprintsync move <id> <todo|in_progress|review|done>"
}
func (c *MoveCmd) NeedsAuth() bool { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskRef(args)
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	switch len(rest) {
	case 0:
		return usageError(errOut, "target status required")
	case 1:
	default:
		return usageError(errOut, "unexpected argument: %s", rest[1])
	}

	to, err := service.ParseStatus(rest[0])
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	return runMove(ctx, rt, id, to, out, errOut)
}

// DoneCmd implements the done command, a shortcut for "move <id> done".
// The workflow still applies: only a task in review can be completed.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a reviewed task done" }
func (c *DoneCmd) Usage() string     { return "sprintsync done <id>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskRef(args)
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if len(rest) > 0 {
		return usageError(errOut, "unexpected argument: %s", rest[0])
	}
	return runMove(ctx, rt, id, service.StatusDone, out, errOut)
}

// runMove is the shared implementation for move and done.
func runMove(ctx context.Context, rt *Runtime, id int64, to service.Status, out, errOut io.Writer) int {
	task, err := rt.Tasks().Move(ctx, id, to)
	return mutationResult(rt, out, errOut, task, err)
}
