package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	flag "github.com/spf13/pflag"

	"sprintsync/internal/exitcode"
	"sprintsync/internal/prompt"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the interactive shell. Every command run from the
// shell shares one Runtime, so the task list stays loaded between commands.
type ShellCmd struct{}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return []string{"repl"} }
func (c *ShellCmd) Synopsis() string  { return "Start an interactive session" }
func (c *ShellCmd) Usage() string     { return "sprintsync shell" }
func (c *ShellCmd) NeedsAuth() bool   { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

const shellPrompt = "sprintsync> "

func (c *ShellCmd) Run(ctx context.Context, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	if rt.Prompter == nil {
		return usageError(errOut, "shell needs an interactive terminal")
	}

	var expired atomic.Bool
	unregister := rt.Session.OnInvalidate(func() { expired.Store(true) })
	defer unregister()

	reg := rt.registry()
	if l, ok := rt.Prompter.(interface{ SetCompleter(func(string) []string) }); ok {
		l.SetCompleter(func(line string) []string {
			if strings.Contains(line, " ") {
				return nil
			}
			return reg.Complete(line)
		})
	}

	if !rt.quiet() {
		fmt.Fprintln(out, "sprintsync shell. Type 'help' for commands, 'exit' to quit.")
	}
	if err := rt.Tasks().Refresh(ctx); err != nil {
		return reportError(errOut, err)
	}

	for {
		if ctx.Err() != nil {
			return exitcode.Success
		}

		line, err := rt.Prompter.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(out)
				return exitcode.Success
			}
			return reportError(errOut, err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rt.Prompter.AppendHistory(line)

		words, err := splitWords(line)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}

		switch words[0] {
		case "exit", "quit", "q":
			return exitcode.Success
		}

		c.exec(ctx, rt, reg, words, out, errOut)

		if expired.Load() {
			fmt.Fprintln(errOut, "session expired; run login")
			return exitcode.AuthError
		}
	}
}

// exec runs one shell line. Errors are printed; the shell keeps going.
func (c *ShellCmd) exec(ctx context.Context, rt *Runtime, reg *Registry, words []string, out, errOut io.Writer) {
	cmd, ok := reg.Find(words[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", words[0])
		return
	}
	if cmd.Name() == c.Name() {
		fmt.Fprintln(errOut, "error: already in the shell")
		return
	}
	if cmd.NeedsAuth() && !rt.Session.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: login)")
		return
	}

	fs := NewFlagSet(cmd)
	if _, ok := ParseFlags(cmd, fs, words[1:], out, errOut); !ok {
		return
	}
	cmd.Run(ctx, rt, fs.Args(), out, errOut)
}

// splitWords splits a shell line on spaces, keeping quoted runs together.
// Single and double quotes are both accepted; there are no escapes.
func splitWords(line string) ([]string, error) {
	var (
		words  []string
		cur    strings.Builder
		quote  rune
		inWord bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
