// Package email holds small helpers for composing outbound mail from
// user-supplied fields.
package email

import (
	"net/mail"
	"strings"
	"unicode"
)

// DeriveNameFromEmail guesses a first and last name from the local part of
// an address, e.g. "jane.doe@x" gives "Jane", "Doe".
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

// DisplayName returns name when set, otherwise one derived from address.
func DisplayName(name, address string) string {
	if name = HeaderSafe(name); name != "" {
		return name
	}
	first, last := DeriveNameFromEmail(address)
	if last == "User" {
		return first
	}
	return first + " " + last
}

// Valid reports whether address parses as a single mailbox.
func Valid(address string) bool {
	a, err := mail.ParseAddress(address)
	return err == nil && a.Address == strings.TrimSpace(address)
}

// HeaderSafe strips line breaks so a value cannot start a new header.
func HeaderSafe(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	return strings.TrimSpace(s)
}

// FormatAddress renders `"Name" <addr>` with the name quoted as needed.
func FormatAddress(name, address string) string {
	return (&mail.Address{Name: HeaderSafe(name), Address: HeaderSafe(address)}).String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
