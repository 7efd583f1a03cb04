package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/output"
	"sprintsync/internal/service"
	"sprintsync/internal/tasklist"
	"sprintsync/internal/workflow"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description optString
	minutes     optInt
	assignee    optInt64
	suggest     bool
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "sprintsync add [--description <text>] [--minutes <n>] [--assignee <id>] [--suggest] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = AddCmd{}
	fs.VarP(&c.description, "description", "d", "")
	fs.VarP(&c.minutes, "minutes", "m", "")
	fs.VarP(&c.assignee, "assignee", "a", "")
	fs.BoolVar(&c.suggest, "suggest", false, "")
}

func (c *AddCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return usageError(errOut, "title required")
	}

	fields := service.TaskFields{
		Title:        title,
		Description:  c.description.v,
		TotalMinutes: c.minutes.v,
		AssigneeID:   c.assignee.v,
	}

	if c.suggest && fields.Description == nil {
		// Reject bad fields before spending an AI call on them.
		if err := workflow.ValidateFields(fields, true); err != nil {
			return reportError(errOut, err)
		}
		s, err := rt.Service.Suggest(ctx, service.SuggestDescription, title)
		if err != nil {
			return reportError(errOut, err)
		}
		if s.Warning != "" && !rt.quiet() {
			fmt.Fprintf(errOut, "warning: %s\n", s.Warning)
		}
		text := s.Suggestion
		fields.Description = &text
	}

	task, err := rt.Tasks().Create(ctx, fields)
	return mutationResult(rt, out, errOut, task, err)
}

// mutationResult prints the task returned by a mutation. A failed refresh
// after a successful mutation still prints the task, then warns.
func mutationResult(rt *Runtime, out, errOut io.Writer, task service.Task, err error) int {
	var refreshErr *tasklist.RefreshError
	if err != nil && !errors.As(err, &refreshErr) {
		return reportError(errOut, err)
	}
	if code := printTask(rt, out, errOut, task); code != exitcode.Success {
		return code
	}
	if err != nil {
		return reportError(errOut, err)
	}
	return exitcode.Success
}

// printTask writes a task result in the configured format. Text output is
// the task line and is suppressed by --quiet.
func printTask(rt *Runtime, out, errOut io.Writer, task service.Task) int {
	ok, err := output.Structured(out, rt.outputFormat(), task)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !ok && !rt.quiet() {
		output.FormatTask(out, task)
	}
	return exitcode.Success
}
