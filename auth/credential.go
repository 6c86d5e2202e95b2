package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized is the only error an unauthenticated caller ever sees
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned by stores when no credential matches
	ErrNotFound = errors.New("credential not found")
)

/* Credential holds one API account's authentication material.
 * SharedSecret never leaves the process: it is excluded from JSON and
 * redacted by String.
 */
type Credential struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	SharedSecret string    `json:"-"`
	Tier         Tier      `json:"tier"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// String implements fmt.Stringer without the shared secret
func (c Credential) String() string {
	return fmt.Sprintf("Credential{ID:%s AccountID:%s Tier:%s IsActive:%t SharedSecret:[REDACTED]}", c.ID, c.AccountID, c.Tier, c.IsActive)
}

// GoString keeps %#v from printing the secret
func (c Credential) GoString() string {
	return c.String()
}

// Identity is the resolved caller attached to an authenticated request
type Identity struct {
	ID        string
	AccountID string
	Tier      Tier
}

func (c Credential) identity() Identity {
	return Identity{
		ID:        c.ID,
		AccountID: c.AccountID,
		Tier:      c.Tier,
	}
}
