// Package session exposes the signed-in user. Sign-in itself happens
// elsewhere; alarmist only stores the resulting identity in the OS keyring.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/alarmist/internal/constants"
	"github.com/julianstephens/alarmist/internal/keyring"
	"github.com/julianstephens/alarmist/internal/logger"
)

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// Source reports the current user, if any.
type Source interface {
	CurrentUser() (User, bool)
}

// Static is a fixed session, used by the API server and tests.
type Static struct {
	User User
}

func (s Static) CurrentUser() (User, bool) {
	return s.User, s.User.ID != ""
}

// Keyring reads the session blob stored under the session account.
type Keyring struct{}

func (Keyring) CurrentUser() (User, bool) {
	raw, err := keyring.Get(constants.SessionKeyringUser)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to read session from keyring", "error", err)
		}
		return User{}, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		logger.Warn("Stored session is corrupt", "error", err)
		return User{}, false
	}
	return u, u.ID != ""
}

// Save stores u as the current session.
func Save(u User) error {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return keyring.Set(constants.SessionKeyringUser, string(b))
}

// Clear removes the stored session. Clearing an absent session is not an error.
func Clear() error {
	if err := keyring.Delete(constants.SessionKeyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
