// Package setup provides the terminal settings wizard.
package setup

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/vadiminshakov/tally/internal/domain"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// CredentialSaver persists the credential pair entered by the user.
type CredentialSaver interface {
	Save(creds domain.Credentials) error
}

// RunTUI launches the terminal settings wizard and persists the entered keys.
func RunTUI(store CredentialSaver) error {
	var (
		apiKey    string
		secretKey string
		confirm   bool
	)

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("TALLY SETTINGS"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Read-only API keys are enough, the viewer never trades.\n"))

	fmt.Println(stepStyle.Render("STEP 1: API KEYS"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				Value(&apiKey).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("api key cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Secret Key").
				Value(&secretKey).
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("secret key cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TALLY SETTINGS"))
	fmt.Println(stepStyle.Render("CONFIRMATION"))

	summary := fmt.Sprintf("API Key: %s\nSecret Key: %s\n", maskKey(apiKey), maskKey(secretKey))
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save credentials?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := store.Save(domain.Credentials{APIKey: apiKey, SecretKey: secretKey}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("\nCredentials saved."))
	return nil
}

// maskKey keeps only the first four characters visible.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
