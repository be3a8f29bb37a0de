// Package confirmations provides the yes/no prompt destructive commands
// gate on before touching the filesystem.
package confirmations

import (
	"fmt"
	"strings"

	pezerrors "github.com/arthur-debert/pez/pkg/errors"
)

// Prompter asks the user to approve an operation. Implementations decide
// whether a human is actually consulted.
type Prompter interface {
	Confirm(prompt string) (bool, error)
}

// Console prompts on stdout and reads the answer from stdin. Anything but
// y or yes, including an empty line, declines.
type Console struct{}

// NewConsole creates a console prompter.
func NewConsole() *Console {
	return &Console{}
}

// Confirm shows prompt with a [y/N] suffix and reads one token.
func (c *Console) Confirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil && err.Error() != "unexpected newline" {
		return false, pezerrors.Wrap(err, pezerrors.ErrInvalidInput, "failed to read user input")
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}

// Auto answers every prompt with a fixed decision, for --yes runs and
// tests.
type Auto bool

// Confirm returns the fixed decision without prompting.
func (a Auto) Confirm(string) (bool, error) {
	return bool(a), nil
}
