package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/output"
	"sprintsync/internal/service"
	"sprintsync/internal/tasklist"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `sprintsync` (no args) and `sprintsync list [flags]`.
type ListCmd struct {
	status   string
	assignee optInt64
	counts   bool
}

// SetStatus sets the status filter (for testing).
func (c *ListCmd) SetStatus(status string) {
	c.status = status
}

// SetCounts enables the per-status summary (for testing).
func (c *ListCmd) SetCounts(counts bool) {
	c.counts = counts
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "sprintsync list [--status <status>] [--assignee <id>] [--counts]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.assignee = optInt64{}
	fs.StringVarP(&c.status, "status", "s", "", "")
	fs.VarP(&c.assignee, "assignee", "a", "")
	fs.BoolVarP(&c.counts, "counts", "c", false, "")
}

// listing is the structured form of the list output.
type listing struct {
	Tasks  []service.Task   `json:"tasks" yaml:"tasks"`
	Total  int              `json:"total" yaml:"total"`
	Counts *tasklist.Counts `json:"counts,omitempty" yaml:"counts,omitempty"`
}

func (c *ListCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}

	filter := tasklist.Filter{AssigneeID: c.assignee.v}
	if c.status != "" {
		s, err := service.ParseStatus(c.status)
		if err != nil {
			return usageError(errOut, "%v", err)
		}
		filter.Status = s
	}

	tasks := rt.Tasks()
	if err := tasks.SetFilter(ctx, filter); err != nil {
		return reportError(errOut, err)
	}
	view := tasks.View()

	result := listing{Tasks: view.Items, Total: view.Total}
	if c.counts {
		counts := tasks.Counts()
		result.Counts = &counts
	}
	ok, err := output.Structured(out, rt.outputFormat(), result)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if ok {
		return exitcode.Success
	}

	if len(view.Items) == 0 {
		if !rt.quiet() {
			fmt.Fprintln(out, "no tasks found")
		}
	}
	for _, task := range view.Items {
		output.FormatTask(out, task)
	}

	if c.counts {
		if len(view.Items) > 0 {
			fmt.Fprintln(out)
		}
		output.FormatCounts(out, *result.Counts)
	}
	if !rt.quiet() && view.Total > len(view.Items) {
		fmt.Fprintf(out, "(showing %d of %d)\n", len(view.Items), view.Total)
	}
	return exitcode.Success
}
