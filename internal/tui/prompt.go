package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// Prompt represents a simple interactive prompt configuration
type Prompt struct {
	Message     string
	Default     string
	Placeholder string
	Required    bool
}

// Credentials are the fields of the login form
type Credentials struct {
	Email    string
	Password string
}

// SignupDetails are the fields of the signup form
type SignupDetails struct {
	Email    string
	Name     string
	Password string
}

// PromptForString displays an interactive prompt and returns the user's input
func PromptForString(p Prompt) (string, error) {
	value := p.Default

	input := huh.NewInput().
		Title(p.Message).
		Placeholder(p.Placeholder).
		Value(&value)

	if p.Required {
		input = input.Validate(required(p.Message))
	}

	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return strings.TrimSpace(value), nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return confirmed, nil
}

// PromptForSelect displays a selection prompt with multiple options
func PromptForSelect(message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt, opt)
	}

	selected := options[0]
	selectField := huh.NewSelect[string]().
		Title(message).
		Options(huhOptions...).
		Value(&selected)

	if err := huh.NewForm(huh.NewGroup(selectField)).Run(); err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

// PromptForCredentials asks for whatever part of c is still empty
func PromptForCredentials(c Credentials) (Credentials, error) {
	if err := LoginForm(&c).Run(); err != nil {
		return Credentials{}, fmt.Errorf("prompt failed: %w", err)
	}
	c.Email = strings.TrimSpace(c.Email)
	return c, nil
}

// PromptForSignup asks for the account details
func PromptForSignup(d SignupDetails) (SignupDetails, error) {
	if err := SignupForm(&d).Run(); err != nil {
		return SignupDetails{}, fmt.Errorf("prompt failed: %w", err)
	}
	d.Email = strings.TrimSpace(d.Email)
	d.Name = strings.TrimSpace(d.Name)
	return d, nil
}

// LoginForm builds the login form. Fields already filled in c are skipped.
func LoginForm(c *Credentials) *huh.Form {
	var fields []huh.Field
	if c.Email == "" {
		fields = append(fields, emailField(&c.Email))
	}
	if c.Password == "" {
		fields = append(fields, passwordField(&c.Password, "Password"))
	}
	return huh.NewForm(huh.NewGroup(fields...).Title("Sign in to IssueHub"))
}

// SignupForm builds the signup form
func SignupForm(d *SignupDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			emailField(&d.Email),
			huh.NewInput().
				Title("Name").
				Description("Optional").
				Value(&d.Name),
			passwordField(&d.Password, "Password"),
		).Title("Create an IssueHub account"),
	)
}

func emailField(v *string) huh.Field {
	return huh.NewInput().
		Title("Email").
		Placeholder("you@example.com").
		Value(v).
		Validate(ValidateEmail)
}

func passwordField(v *string, title string) huh.Field {
	return huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(v).
		Validate(required(title))
}

// ValidateEmail is a light shape check; the server has the final word
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	at := strings.IndexByte(s, '@')
	if at < 1 || at == len(s)-1 || strings.ContainsAny(s, " \t") {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", strings.ToLower(name))
		}
		return nil
	}
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	if inCI() {
		return false
	}
	return IsInteractive()
}

func inCI() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}
	return false
}
