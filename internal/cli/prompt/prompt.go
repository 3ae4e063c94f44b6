// Package prompt reads interactive input from the terminal
package prompt

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when input is needed but stdin is not a terminal
var ErrNotInteractive = errors.New("input required in non-interactive mode")

// Prompter asks the user for values
type Prompter interface {
	Interactive() bool
	Input(label, defaultValue string, validate func(string) error) (string, error)
	Password(label string) (string, error)
	Confirm(label string) (bool, error)
	Select(label string, items []string) (int, error)
}

// Terminal prompts on the process's stdin/stdout
type Terminal struct{}

// NewTerminal returns a Prompter bound to the controlling terminal
func NewTerminal() *Terminal {
	return &Terminal{}
}

// Interactive reports whether stdin is a terminal (not piped)
func (t *Terminal) Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (t *Terminal) Input(label, defaultValue string, validate func(string) error) (string, error) {
	if !t.Interactive() {
		return "", fmt.Errorf("%w: %s", ErrNotInteractive, strings.ToLower(label))
	}

	p := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validate,
	}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s cancelled: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(v), nil
}

// Password reads a secret without echo
func (t *Terminal) Password(label string) (string, error) {
	if !t.Interactive() {
		return "", fmt.Errorf("%w: %s", ErrNotInteractive, strings.ToLower(label))
	}

	fmt.Printf("%s: ", label)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func (t *Terminal) Confirm(label string) (bool, error) {
	if !t.Interactive() {
		return false, nil
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Select shows a list and returns the chosen index
func (t *Terminal) Select(label string, items []string) (int, error) {
	if !t.Interactive() {
		return -1, fmt.Errorf("%w: %s", ErrNotInteractive, strings.ToLower(label))
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	p := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      10,
	}

	index, _, err := p.Run()
	if err != nil {
		return -1, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}

// ValidateEmail accepts a single bare address
func ValidateEmail(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return errors.New("enter a valid email address")
	}
	return nil
}

// ValidateRequired rejects blank input
func ValidateRequired(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("value is required")
	}
	return nil
}

// ValidatePassword mirrors the server's strength rule: at least 8
// characters with an uppercase letter and a digit
func ValidatePassword(v string) error {
	if len(v) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var upper, digit bool
	for _, r := range v {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !digit {
		return errors.New("password must contain an uppercase letter and a digit")
	}
	return nil
}
