package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/output"
)

func init() {
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "sprintsync logout" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	// The token is stateless on the server; forgetting it is all there is.
	if err := rt.Session.Clear(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	if !rt.quiet() {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return []string{"me"} }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "sprintsync whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	me, err := rt.Service.Me(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	rt.Session.SetIdentity(me)

	ok, err := output.Structured(out, rt.outputFormat(), me)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if ok {
		return exitcode.Success
	}

	role := "member"
	if me.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(out, "%s <%s> (id %d, %s)\n", me.Username, me.Email, me.ID, role)

	// The expiry is read from the token without verifying it.
	if claims, ok := rt.Session.Claims(); ok {
		if exp := claims.Expiry(); !exp.IsZero() {
			fmt.Fprintf(out, "session expires %s\n", exp.Local().Format(time.RFC3339))
		}
	}
	return exitcode.Success
}
