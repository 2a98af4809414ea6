package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned when the user interrupts a prompt
var ErrCancelled = errors.New("operation cancelled by user")

// ConfirmPrompt asks a yes/no question. Anything but "y" is a no.
func ConfirmPrompt(label string, stdin io.ReadCloser, stdout io.WriteCloser) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     stdin,
		Stdout:    stdout,
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, ErrCancelled
		}
		return false, err
	}

	// promptui returns "y" for yes
	return result == "y" || result == "Y", nil
}

// IsInteractive reports whether both stdin and stdout are terminals
func IsInteractive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Confirmer decides whether an existing executable may be replaced
type Confirmer struct {
	AssumeYes   bool
	Interactive func() bool
	Ask         func(label string) (bool, error)
}

// NewConfirmer returns a Confirmer that prompts on the process terminal
func NewConfirmer(assumeYes bool) *Confirmer {
	return &Confirmer{
		AssumeYes:   assumeYes,
		Interactive: IsInteractive,
		Ask: func(label string) (bool, error) {
			return ConfirmPrompt(label, os.Stdin, os.Stdout)
		},
	}
}

// ConfirmOverwrite asks before replacing path. Without a terminal there is
// nobody to ask, so the overwrite goes ahead.
func (c *Confirmer) ConfirmOverwrite(path string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}
	if c.Interactive == nil || !c.Interactive() || c.Ask == nil {
		return true, nil
	}
	return c.Ask(fmt.Sprintf("%s already exists. Overwrite", path))
}
