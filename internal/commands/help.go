package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "sprintsync help [command]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	reg := rt.registry()

	if len(args) > 0 {
		cmd, ok := reg.Find(args[0])
		if !ok {
			return usageError(errOut, "unknown command: %s", args[0])
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "\nAliases: %v\n", aliases)
		}
		return exitcode.Success
	}

	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  sprintsync                 List tasks")
	for _, cmd := range reg.All() {
		fmt.Fprintf(out, "  %-26s %s\n", cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprint(out, commonFlagsText)
	return exitcode.Success
}

const commonFlagsText = `
Common flags:
  --config <dir>         Override config directory
  --api-url <url>        Override the server URL
  -o, --output <format>  text, json or yaml
  -q, --quiet            Suppress informational output
  --debug                Print debug logs to stderr

Run 'sprintsync help <command>' for command usage.
`
