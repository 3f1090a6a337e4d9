// Package forms holds the console's interactive prompts.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/agenghermawan/clandestineproject/internal/admin"
	"github.com/agenghermawan/clandestineproject/pkg/email"
)

// ErrCancelled is returned when the user aborts a form.
var ErrCancelled = errors.New("cancelled")

// ValidateUsername rejects blank and whitespace-containing names.
func ValidateUsername(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("username cannot be empty")
	}
	if strings.ContainsAny(s, " \t") {
		return errors.New("username cannot contain spaces")
	}
	return nil
}

func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email cannot be empty")
	}
	if !email.Valid(s) {
		return errors.New("not a valid email address")
	}
	return nil
}

func ValidateToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("token cannot be empty")
	}
	return nil
}

// NewUserForm asks for a new user's details, writing into in.
func NewUserForm(in *admin.UserInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&in.Username).
				Validate(ValidateUsername),
			huh.NewInput().
				Title("Email").
				Value(&in.Email).
				Validate(ValidateEmail),
			huh.NewConfirm().
				Title("Active").
				Value(&in.IsActive).
				Affirmative("Yes").
				Negative("No"),
			huh.NewConfirm().
				Title("Administrator").
				Description("Admins can manage every other user.").
				Value(&in.IsAdmin).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithWidth(60)
}

// NewTokenForm asks for a session token without echoing it.
func NewTokenForm(server string, token *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Session token").
				Description("Paste the value of the token cookie for " + server).
				Value(token).
				Password(true).
				Validate(ValidateToken),
		),
	).WithWidth(80)
}

// Run runs f. Any failure to complete the form, ctrl+c included, is
// reported as ErrCancelled.
func Run(f *huh.Form) error {
	if err := f.Run(); err != nil {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return nil
}

// Normalize trims the fields a form collected.
func Normalize(in admin.UserInput) admin.UserInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return in
}
