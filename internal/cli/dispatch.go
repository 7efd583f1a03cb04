// Package cli parses the command line and runs commands behind the
// session gate.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"sprintsync/internal/commands"
	"sprintsync/internal/config"
	"sprintsync/internal/exitcode"
	"sprintsync/internal/logging"
	"sprintsync/internal/prompt"
	"sprintsync/internal/service"
	"sprintsync/internal/session"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, sess *session.Manager, log *zap.Logger) (service.Service, error)

// PrompterFactory creates the interactive prompter for one run.
type PrompterFactory func(cfg *config.Config) prompt.Prompter

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	prompter PrompterFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// SetPrompter sets the prompter factory. Without one, commands that need
// to ask the user fail instead.
func (d *Dispatcher) SetPrompter(f PrompterFactory) {
	d.prompter = f
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	apiURL    string
	output    string
	quiet     bool
	debug     bool
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := commands.NewFlagSet(cmd)

	var common commonFlags
	fs.StringVar(&common.configDir, "config", "", "")
	fs.StringVar(&common.apiURL, "api-url", "", "")
	fs.StringVarP(&common.output, "output", "o", "", "")
	fs.BoolVarP(&common.quiet, "quiet", "q", false, "")
	fs.BoolVar(&common.debug, "debug", false, "")

	if code, ok := commands.ParseFlags(cmd, fs, args, out, errOut); !ok {
		return code
	}

	cfg, err := config.Load(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug
	if common.apiURL != "" {
		if err := cfg.SetAPIURL(common.apiURL); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}
	if common.output != "" {
		if err := cfg.SetOutput(common.output); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}

	log := logging.New(logging.Config{
		Debug:    cfg.Debug,
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	}, errOut)
	defer func() { _ = log.Sync() }()

	sess := session.NewManager(session.NewFileStore(cfg.TokenPath()), log)
	if _, _, err := sess.LoadPersisted(); err != nil {
		// An unreadable token file means logged out; login overwrites it.
		log.Warn("ignoring unreadable token file", zap.String("path", cfg.TokenPath()), zap.Error(err))
	}

	// Check auth requirements before anything touches the network.
	if cmd.NeedsAuth() && !sess.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: sprintsync login)")
		return exitcode.AuthError
	}

	// The factory only fails on bad settings.
	svc, err := d.factory(ctx, cfg, sess, log)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	rt := &commands.Runtime{
		Config:   cfg,
		Service:  svc,
		Session:  sess,
		Log:      log,
		Registry: d.registry,
	}
	if d.prompter != nil {
		p := d.prompter(cfg)
		defer p.Close()
		rt.Prompter = p
	}

	log.Debug("running command", zap.String("command", cmd.Name()), zap.Strings("args", fs.Args()))
	return cmd.Run(ctx, rt, fs.Args(), out, errOut)
}
