// Package prompt reads interactive input: plain lines, passwords,
// yes/no confirmations, and the shell command line with history.
package prompt

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/peterh/liner"
)

// ErrAborted is returned when the user aborts a prompt with Ctrl-C or EOF.
var ErrAborted = errors.New("aborted")

// Prompter is the input side of an interactive session.
type Prompter interface {
	// Prompt reads one line.
	Prompt(label string) (string, error)

	// Password reads one line without echo.
	Password(label string) (string, error)

	// Confirm asks a yes/no question. Anything but y/yes is a no.
	Confirm(question string) (bool, error)

	// AppendHistory records a shell line for later recall.
	AppendHistory(line string)

	// Close restores the terminal and saves history.
	Close() error
}

// Liner is a Prompter on top of peterh/liner. The terminal is only
// switched to raw mode on first use.
type Liner struct {
	historyPath string
	completer   func(string) []string

	once  sync.Once
	state *liner.State
}

// NewLiner creates a Liner. historyPath may be empty to disable history.
func NewLiner(historyPath string) *Liner {
	return &Liner{historyPath: historyPath}
}

// SetCompleter sets tab completion for Prompt. Call before the first prompt.
func (l *Liner) SetCompleter(fn func(line string) []string) {
	l.completer = fn
}

func (l *Liner) init() *liner.State {
	l.once.Do(func() {
		l.state = liner.NewLiner()
		l.state.SetCtrlCAborts(true)
		if l.completer != nil {
			l.state.SetCompleter(l.completer)
		}
		if l.historyPath == "" {
			return
		}
		if f, err := os.Open(l.historyPath); err == nil {
			_, _ = l.state.ReadHistory(f)
			f.Close()
		}
	})
	return l.state
}

// Prompt implements Prompter.
func (l *Liner) Prompt(label string) (string, error) {
	line, err := l.init().Prompt(label)
	return line, mapErr(err)
}

// Password implements Prompter.
func (l *Liner) Password(label string) (string, error) {
	line, err := l.init().PasswordPrompt(label)
	return line, mapErr(err)
}

// Confirm implements Prompter.
func (l *Liner) Confirm(question string) (bool, error) {
	answer, err := l.Prompt(question + " (yes/no): ")
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// AppendHistory implements Prompter.
func (l *Liner) AppendHistory(line string) {
	l.init().AppendHistory(line)
}

// Close implements Prompter. It is a no-op if nothing was prompted.
func (l *Liner) Close() error {
	if l.state == nil {
		return nil
	}
	if l.historyPath != "" {
		if f, err := os.Create(l.historyPath); err == nil {
			_, _ = l.state.WriteHistory(f)
			f.Close()
		}
	}
	return l.state.Close()
}

// IsYes reports whether answer is an affirmative reply.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func mapErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return ErrAborted
	}
	return err
}

var _ Prompter = (*Liner)(nil)
