package webhook

import (
	"errors"
	"time"

	"github.com/marcelsud/wusul-core/webhook/cloudevent"
)

var (
	// ErrNotFound is returned when a subscription or delivery attempt does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidSubscription wraps validation failures on Register
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrReadOnly is returned by subscription stores that cannot be modified at runtime
	ErrReadOnly = errors.New("subscriptions are read-only")
)

// MaxResponseBody is how much of a subscriber response is kept on the attempt
const MaxResponseBody = 4 << 10

/* DeliveryAttempt tracks the retry lifecycle of one event for one subscription
 * Retries mutate the same record; Attempts never decreases
 */
type DeliveryAttempt struct {
	ID             string
	SubscriptionID string
	AccountID      string
	EventType      string
	URL            string
	Payload        cloudevent.CloudEvent
	Attempts       int
	State          State
	ResponseStatus int
	ResponseBody   string
	CreatedAt      time.Time
	LastAttemptAt  time.Time
	DeliveredAt    time.Time
	FailedAt       time.Time
	AbandonedAt    time.Time
	NextAttemptAt  time.Time
}

// NewDeliveryAttempt creates a pending attempt for sub
func NewDeliveryAttempt(id string, sub Subscription, event cloudevent.CloudEvent, now time.Time) DeliveryAttempt {
	return DeliveryAttempt{
		ID:             id,
		SubscriptionID: sub.ID,
		AccountID:      sub.AccountID,
		EventType:      event.Type,
		URL:            sub.URL,
		Payload:        event,
		State:          Pending,
		CreatedAt:      now,
	}
}

// begin counts a send before it is made
func (a *DeliveryAttempt) begin(now time.Time) {
	a.Attempts++
	a.LastAttemptAt = now
}

func (a *DeliveryAttempt) succeed(now time.Time, status int, body string) {
	a.State = Delivered
	a.ResponseStatus = status
	a.ResponseBody = body
	a.LastAttemptAt = now
	a.DeliveredAt = now
	a.NextAttemptAt = time.Time{}
}

func (a *DeliveryAttempt) fail(now time.Time, status int, body string) {
	a.State = Retrying
	a.ResponseStatus = status
	a.ResponseBody = body
	a.LastAttemptAt = now
	a.FailedAt = now
}

func (a *DeliveryAttempt) abandon(now time.Time) {
	a.State = Abandoned
	a.AbandonedAt = now
	a.NextAttemptAt = time.Time{}
}

// Successful reports whether status is a 2xx response
func Successful(status int) bool {
	return status >= 200 && status < 300
}
