package commands

import (
	"context"
	"io"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optString
	description optString
	minutes     optInt
	assignee    optInt64
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task's fields" }
func (c *EditCmd) Usage() string {
	return "sprintsync edit [--title <t>] [--description <text>] [--minutes <n>] [--assignee <id>] <id>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.VarP(&c.title, "title", "t", "")
	fs.VarP(&c.description, "description", "d", "")
	fs.VarP(&c.minutes, "minutes", "m", "")
	fs.VarP(&c.assignee, "assignee", "a", "")
}

func (c *EditCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskRef(args)
	if err != nil {
		return usageError(errOut, "%v", err)
	}
	if len(rest) > 0 {
		return usageError(errOut, "unexpected argument: %s", rest[0])
	}

	fields := service.TaskFields{
		Description:  c.description.v,
		TotalMinutes: c.minutes.v,
		AssigneeID:   c.assignee.v,
	}
	if c.title.v != nil {
		if *c.title.v == "" {
			return usageError(errOut, "title must not be blank")
		}
		fields.Title = *c.title.v
	}
	if fields == (service.TaskFields{}) {
		return usageError(errOut, "nothing to change (use --title, --description, --minutes or --assignee)")
	}

	task, err := rt.Tasks().Edit(ctx, id, fields)
	return mutationResult(rt, out, errOut, task, err)
}
