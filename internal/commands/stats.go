package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/output"
	"sprintsync/internal/service"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct {
	days  int
	limit int
}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Show top users and cycle time" }
func (c *StatsCmd) Usage() string     { return "sprintsync stats [--days <n>] [--limit <n>]" }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.days, "days", 7, "")
	fs.IntVar(&c.limit, "limit", 5, "")
}

type statsReport struct {
	TopUsers  service.TopUsersReport `json:"top_users" yaml:"top_users"`
	CycleTime []service.StatusCycle  `json:"cycle_time_by_status" yaml:"cycle_time_by_status"`
}

func (c *StatsCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	if c.days < 1 || c.days > 90 {
		return usageError(errOut, "invalid days: %d (1-90)", c.days)
	}
	if c.limit < 1 || c.limit > 20 {
		return usageError(errOut, "invalid limit: %d (1-20)", c.limit)
	}

	top, err := rt.Service.TopUsers(ctx, c.days, c.limit)
	if err != nil {
		return reportError(errOut, err)
	}
	cycles, err := rt.Service.CycleTime(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	ok, err := output.Structured(out, rt.outputFormat(), statsReport{TopUsers: top, CycleTime: cycles})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if ok {
		return exitcode.Success
	}

	output.FormatTopUsers(out, top)
	fmt.Fprintln(out)
	output.FormatCycleTime(out, cycles)
	return exitcode.Success
}
