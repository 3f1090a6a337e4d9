// Package admin holds the user-management types shared by the gateway's
// admin routes and the console client.
package admin

import (
	"strings"

	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
)

// MissingFieldsMessage is returned when a new user lacks username or email.
const MissingFieldsMessage = "Please fill in both username and email."

// User is a backend user record.
type User struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Pagination is the paging block of a user list.
type Pagination struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// UsersPage is one page of GET /admin/users.
type UsersPage struct {
	Data       []User     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// UserEnvelope wraps a single user as the backend returns it.
type UserEnvelope struct {
	Data    User   `json:"data"`
	Message string `json:"message,omitempty"`
}

// UserInput is the body of create and update calls.
type UserInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive bool   `json:"is_active"`
}

// Validate checks the fields required to create a user.
func (in UserInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return dErrors.New(dErrors.CodeValidation, MissingFieldsMessage)
	}
	return nil
}
