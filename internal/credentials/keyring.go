// Package credentials keeps console session tokens in the system keyring,
// one entry per gateway URL.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/agenghermawan/clandestineproject/pkg/platform/sentinel"
)

const serviceName = "clandestinectl"

// ErrNotFound indicates no token is stored for the server.
var ErrNotFound = fmt.Errorf("session token: %w", sentinel.ErrNotFound)

// GetToken returns the session token saved for server.
func GetToken(server string) (string, error) {
	token, err := keyring.Get(serviceName, key(server))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read token for %s: %w", server, err)
	}
	return token, nil
}

func SetToken(server, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return errors.New("session token cannot be empty")
	}
	if err := keyring.Set(serviceName, key(server), trimmed); err != nil {
		return fmt.Errorf("store token for %s: %w", server, err)
	}
	return nil
}

func DeleteToken(server string) error {
	if err := keyring.Delete(serviceName, key(server)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete token for %s: %w", server, err)
	}
	return nil
}

func key(server string) string {
	return strings.TrimRight(strings.TrimSpace(server), "/")
}
