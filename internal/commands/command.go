// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"sprintsync/internal/config"
	"sprintsync/internal/exitcode"
	"sprintsync/internal/prompt"
	"sprintsync/internal/service"
	"sprintsync/internal/session"
	"sprintsync/internal/tasklist"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a session token.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	// It is called on a fresh FlagSet before every run, which also resets
	// flag fields to their defaults.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int
}

// Runtime is everything a command may use. It is built once per process
// by the dispatcher and shared by every command the shell runs.
type Runtime struct {
	Config   *config.Config
	Service  service.Service
	Session  *session.Manager
	Log      *zap.Logger
	Prompter prompt.Prompter

	// Registry is used by help and shell. Nil means DefaultRegistry.
	Registry *Registry

	once  sync.Once
	tasks *tasklist.Coordinator
}

// Tasks returns the task list coordinator, creating it on first use.
// The shell relies on getting the same coordinator for every command.
func (rt *Runtime) Tasks() *tasklist.Coordinator {
	rt.once.Do(func() {
		rt.tasks = tasklist.New(rt.Service, rt.logger())
	})
	return rt.tasks
}

func (rt *Runtime) logger() *zap.Logger {
	if rt.Log == nil {
		return zap.NewNop()
	}
	return rt.Log
}

func (rt *Runtime) registry() *Registry {
	if rt.Registry == nil {
		return DefaultRegistry
	}
	return rt.Registry
}

func (rt *Runtime) quiet() bool {
	return rt.Config != nil && rt.Config.Quiet
}

func (rt *Runtime) outputFormat() string {
	if rt.Config == nil {
		return config.OutputText
	}
	return rt.Config.Output
}

// NewFlagSet returns a FlagSet with cmd's flags registered and pflag's own
// error printing disabled.
func NewFlagSet(cmd Command) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	cmd.RegisterFlags(fs)
	return fs
}

// ParseFlags parses args against fs. On failure it prints the problem and
// returns ok=false with the exit code to stop with; --help prints usage and
// stops with success.
func ParseFlags(cmd Command, fs *flag.FlagSet, args []string, out, errOut io.Writer) (code int, ok bool) {
	err := fs.Parse(args)
	switch {
	case err == nil:
		return exitcode.Success, true
	case errors.Is(err, flag.ErrHelp):
		fmt.Fprintf(out, "Usage:\n  %s\n", cmd.Usage())
		return exitcode.Success, false
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError, false
	}
}
