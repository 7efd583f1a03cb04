package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/output"
)

func init() {
	Register(&UsersCmd{})
}

// UsersCmd implements the users command. By default it shows the user
// directory, which every account may read; --all shows full accounts and
// needs an admin.
type UsersCmd struct {
	all bool
}

// SetAll selects the admin listing (for testing).
func (c *UsersCmd) SetAll(all bool) {
	c.all = all
}

func (c *UsersCmd) Name() string      { return "users" }
func (c *UsersCmd) Aliases() []string { return nil }
func (c *UsersCmd) Synopsis() string  { return "List users (for --assignee ids)" }
func (c *UsersCmd) Usage() string     { return "sprintsync users [--all]" }
func (c *UsersCmd) NeedsAuth() bool   { return true }

func (c *UsersCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *UsersCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	if c.all {
		return c.listAll(ctx, rt, out, errOut)
	}

	users, err := rt.Service.UserDirectory(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	ok, err := output.Structured(out, rt.outputFormat(), users)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if ok {
		return exitcode.Success
	}

	if len(users) == 0 && !rt.quiet() {
		fmt.Fprintln(out, "no users found")
	}
	for _, u := range users {
		output.FormatUserRef(out, u)
	}
	return exitcode.Success
}

// listAll prints full account details. The server answers 403 for members.
func (c *UsersCmd) listAll(ctx context.Context, rt *Runtime, out, errOut io.Writer) int {
	users, err := rt.Service.ListUsers(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	ok, err := output.Structured(out, rt.outputFormat(), users)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if ok {
		return exitcode.Success
	}

	if len(users) == 0 && !rt.quiet() {
		fmt.Fprintln(out, "no users found")
	}
	for _, u := range users {
		output.FormatUser(out, u)
	}
	return exitcode.Success
}
