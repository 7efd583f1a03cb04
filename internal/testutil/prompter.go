package testutil

import (
	"sprintsync/internal/prompt"
)

// ScriptedPrompter answers prompts from a fixed script. When the script
// runs out every prompt fails with prompt.ErrAborted, as on EOF.
type ScriptedPrompter struct {
	Answers []string

	// Labels records every label and question shown, in order.
	Labels []string
	// History records lines passed to AppendHistory.
	History []string
	Closed  bool
}

// NewScriptedPrompter creates a prompter that replies with answers in order.
func NewScriptedPrompter(answers ...string) *ScriptedPrompter {
	return &ScriptedPrompter{Answers: answers}
}

func (p *ScriptedPrompter) next(label string) (string, error) {
	p.Labels = append(p.Labels, label)
	if len(p.Answers) == 0 {
		return "", prompt.ErrAborted
	}
	a := p.Answers[0]
	p.Answers = p.Answers[1:]
	return a, nil
}

// Prompt implements prompt.Prompter.
func (p *ScriptedPrompter) Prompt(label string) (string, error) {
	return p.next(label)
}

// Password implements prompt.Prompter.
func (p *ScriptedPrompter) Password(label string) (string, error) {
	return p.next(label)
}

// Confirm implements prompt.Prompter.
func (p *ScriptedPrompter) Confirm(question string) (bool, error) {
	a, err := p.next(question)
	if err != nil {
		return false, err
	}
	return prompt.IsYes(a), nil
}

// AppendHistory implements prompt.Prompter.
func (p *ScriptedPrompter) AppendHistory(line string) {
	p.History = append(p.History, line)
}

// Close implements prompt.Prompter.
func (p *ScriptedPrompter) Close() error {
	p.Closed = true
	return nil
}

var _ prompt.Prompter = (*ScriptedPrompter)(nil)
