package auth

import "fmt"

// Tier is an account's service level
type Tier string

const (
	Basic        Tier = "BASIC"
	Professional Tier = "PROFESSIONAL"
	Enterprise   Tier = "ENTERPRISE"
)

// NewTier creates a Tier from a string, defaulting to Basic
func NewTier(s string) Tier {
	switch Tier(s) {
	case Professional:
		return Professional
	case Enterprise:
		return Enterprise
	default:
		return Basic
	}
}

// Validate checks if the tier is known
func (t Tier) Validate() error {
	switch t {
	case Basic, Professional, Enterprise:
		return nil
	}
	return fmt.Errorf("invalid tier: %q", string(t))
}

// Satisfies reports whether t meets the required tier exactly.
// Tiers are not ordered: only the named tier unlocks a gated operation.
func (t Tier) Satisfies(required Tier) bool {
	return t == required
}
