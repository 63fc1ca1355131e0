package core

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question on the terminal. Aborting the prompt
// counts as no.
func Confirm(title, description string) (bool, error) {
	var approved bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Sync").
		Negative("Cancel").
		Value(&approved).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return approved, nil
}
