package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/config"
	"sprintsync/internal/exitcode"
	"sprintsync/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in to SprintSync" }
func (c *LoginCmd) Usage() string     { return "sprintsync login [--username <name>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	username := c.username
	if username == "" && len(args) > 0 {
		username = args[0]
		args = args[1:]
	}
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}

	// A stored token is only trusted once the server accepts it.
	if rt.Session.HasToken() {
		me, err := rt.Service.Me(ctx)
		switch {
		case err == nil:
			rt.Session.SetIdentity(me)
			if username == "" || username == me.Username {
				if !rt.quiet() {
					fmt.Fprintf(out, "already logged in as %s\n", me.Username)
				}
				return exitcode.Success
			}
		case errors.Is(err, service.ErrSessionExpired):
			// Cleared by the 401; log in again below.
		default:
			return reportError(errOut, err)
		}
	}

	username, err := ask(rt, "Username: ", username)
	if err != nil {
		return reportError(errOut, err)
	}
	password, err := askPassword(rt, "Password: ")
	if err != nil {
		return reportError(errOut, err)
	}

	res, err := rt.Service.Login(ctx, username, password)
	if err != nil {
		return reportError(errOut, err)
	}
	return startSession(rt, res, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	username string
	email    string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "sprintsync register [--username <name>] [--email <addr>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "")
	fs.StringVarP(&c.email, "email", "e", "", "")
}

// Account constraints enforced by the server, checked early for a better message.
const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

func (c *RegisterCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}

	username, err := ask(rt, "Username: ", c.username)
	if err != nil {
		return reportError(errOut, err)
	}
	if n := len([]rune(username)); n < minUsernameLength || n > maxUsernameLength {
		return usageError(errOut, "username must be %d to %d characters", minUsernameLength, maxUsernameLength)
	}

	email, err := ask(rt, "Email: ", c.email)
	if err != nil {
		return reportError(errOut, err)
	}
	if !strings.Contains(email, "@") {
		return usageError(errOut, "invalid email: %s", email)
	}

	password, err := askPassword(rt, "Password: ")
	if err != nil {
		return reportError(errOut, err)
	}
	if len([]rune(password)) < minPasswordLength {
		return usageError(errOut, "password must be at least %d characters", minPasswordLength)
	}
	if os.Getenv(config.EnvPassword) == "" {
		confirm, err := askPassword(rt, "Confirm password: ")
		if err != nil {
			return reportError(errOut, err)
		}
		if confirm != password {
			return usageError(errOut, "passwords do not match")
		}
	}

	res, err := rt.Service.Register(ctx, username, email, password)
	if err != nil {
		return reportError(errOut, err)
	}
	return startSession(rt, res, out, errOut)
}

// startSession stores the token from a login or register response.
func startSession(rt *Runtime, res service.AuthResult, out, errOut io.Writer) int {
	if res.AccessToken == "" {
		fmt.Fprintln(errOut, "error: backend error: server returned no token")
		return exitcode.BackendError
	}
	if err := rt.Config.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := rt.Session.SetToken(res.AccessToken); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	rt.Session.SetIdentity(res.User)

	if !rt.quiet() {
		fmt.Fprintf(out, "logged in as %s\n", res.User.Username)
	}
	return exitcode.Success
}

// ask returns preset if non-empty, otherwise prompts for a value.
func ask(rt *Runtime, label, preset string) (string, error) {
	if v := strings.TrimSpace(preset); v != "" {
		return v, nil
	}
	if rt.Prompter == nil {
		return "", service.Rejectf("%s required", strings.ToLower(strings.TrimSuffix(label, ": ")))
	}
	v, err := rt.Prompter.Prompt(label)
	if err != nil {
		return "", err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", service.Rejectf("%s required", strings.ToLower(strings.TrimSuffix(label, ": ")))
	}
	return v, nil
}

// askPassword reads a password from SPRINTSYNC_PASSWORD or the terminal.
func askPassword(rt *Runtime, label string) (string, error) {
	if pw := os.Getenv(config.EnvPassword); pw != "" {
		return pw, nil
	}
	if rt.Prompter == nil {
		return "", service.Rejectf("password required (set %s)", config.EnvPassword)
	}
	pw, err := rt.Prompter.Password(label)
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", service.Rejectf("password required")
	}
	return pw, nil
}
