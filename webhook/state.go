package webhook

import "fmt"

/* State represents where a DeliveryAttempt is in its retry lifecycle
 * Follows: Pending -> Retrying -> Delivered/Abandoned
 * Pending can also go straight to Delivered on the first attempt.
 */
type State int

const (
	Pending State = iota + 1
	Retrying
	Delivered
	Abandoned
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Retrying:
		return "retrying"
	case Delivered:
		return "delivered"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// NewState creates a State from a string
func NewState(str string) State {
	switch str {
	case "pending":
		return Pending
	case "retrying":
		return Retrying
	case "delivered":
		return Delivered
	case "abandoned":
		return Abandoned
	default:
		return Pending
	}
}

// Validate checks if the state is valid
func (s State) Validate() error {
	if s < Pending || s > Abandoned {
		return fmt.Errorf("invalid state: %d", s)
	}
	return nil
}

// IsFinal returns true if the state is terminal
func (s State) IsFinal() bool {
	return s == Delivered || s == Abandoned
}

// States lists every valid state in lifecycle order
func States() []State {
	return []State{Pending, Retrying, Delivered, Abandoned}
}
