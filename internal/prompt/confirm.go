// Package prompt asks the user to confirm destructive operations.
package prompt

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/conn-castle/rigkit/internal/messages"
	"github.com/conn-castle/rigkit/internal/terminal"
)

// ErrRequiresTerminal is returned when a prompt is needed but stdin/stdout are
// not a terminal.
var ErrRequiresTerminal = errors.New(messages.PromptRequiresTerminal)

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(title string) (bool, error)
}

// Always answers every question with its own value and never prompts.
type Always bool

// Confirm returns a.
func (a Always) Confirm(string) (bool, error) { return bool(a), nil }

// Huh confirms through a charmbracelet/huh form on stderr.
type Huh struct {
	isTerminal func() bool
	run        func(*huh.Form) error
}

// NewHuh returns a confirmer bound to the process terminal.
func NewHuh() *Huh {
	return &Huh{
		isTerminal: terminal.IsInteractive,
		run:        func(form *huh.Form) error { return form.Run() },
	}
}

// Confirm shows title with Yes/No and returns the answer. Aborting the form
// (Esc or Ctrl+C) counts as No.
func (h *Huh) Confirm(title string) (bool, error) {
	if !h.isTerminal() {
		return false, ErrRequiresTerminal
	}
	value := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&value),
		),
	).WithOutput(os.Stderr)
	err := h.run(form)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value, nil
}
