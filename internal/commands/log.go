package commands

import (
	"context"
	"io"
	"strconv"

	flag "github.com/spf13/pflag"
)

func init() {
	Register(&LogCmd{})
}

// LogCmd implements the log command.
type LogCmd struct{}

func (c *LogCmd) Name() string      { return "log" }
func (c *LogCmd) Aliases() []string { return nil }
func (c *LogCmd) Synopsis() string  { return "Log minutes spent on a task" }
func (c *LogCmd) Usage() string     { return "sprintsync log <id> <minutes>" }
func (c *LogCmd) NeedsAuth() bool   { return true }

func (c *LogCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskRef(args)
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	switch len(rest) {
	case 0:
		return usageError(errOut, "minutes required")
	case 1:
	default:
		return usageError(errOut, "unexpected argument: %s", rest[1])
	}

	minutes, err := strconv.Atoi(rest[0])
	if err != nil {
		return usageError(errOut, "invalid minutes: %s", rest[0])
	}

	task, err := rt.Tasks().LogTime(ctx, id, minutes)
	return mutationResult(rt, out, errOut, task, err)
}
