package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/output"
	"sprintsync/internal/service"
	"sprintsync/internal/workflow"
)

func init() {
	Register(&SuggestCmd{})
}

// SuggestCmd implements the suggest command.
type SuggestCmd struct{}

func (c *SuggestCmd) Name() string      { return "suggest" }
func (c *SuggestCmd) Aliases() []string { return []string{"ai"} }
func (c *SuggestCmd) Synopsis() string  { return "Ask the AI for a description or a daily plan" }
func (c *SuggestCmd) Usage() string {
	return "sprintsync suggest description <title...> | sprintsync suggest plan"
}
func (c *SuggestCmd) NeedsAuth() bool { return true }

func (c *SuggestCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SuggestCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return usageError(errOut, "suggestion type required (description or plan)")
	}

	var (
		kind  service.SuggestKind
		title string
	)
	switch strings.ToLower(args[0]) {
	case "description", "desc":
		kind = service.SuggestDescription
		title = strings.TrimSpace(strings.Join(args[1:], " "))
		if title == "" {
			return usageError(errOut, "title required")
		}
		if len([]rune(title)) > workflow.MaxTitleLength {
			return usageError(errOut, "title too long (max %d characters)", workflow.MaxTitleLength)
		}
	case "plan", "daily_plan", "daily-plan":
		kind = service.SuggestDailyPlan
		if len(args) > 1 {
			return usageError(errOut, "unexpected argument: %s", args[1])
		}
	default:
		return usageError(errOut, "unknown suggestion type: %s (want description or plan)", args[0])
	}

	s, err := rt.Service.Suggest(ctx, kind, title)
	if err != nil {
		return reportError(errOut, err)
	}

	ok, err := output.Structured(out, rt.outputFormat(), s)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if ok {
		return exitcode.Success
	}

	// The server falls back to canned text when no model is configured.
	if s.Warning != "" && !rt.quiet() {
		fmt.Fprintf(errOut, "warning: %s\n", s.Warning)
	} else if s.IsStub && !rt.quiet() {
		fmt.Fprintln(errOut, "warning: AI unavailable, showing a template suggestion")
	}
	fmt.Fprintln(out, strings.TrimRight(s.Suggestion, "\n"))
	return exitcode.Success
}
