package webhook

import (
	"context"
	"time"

	"github.com/marcelsud/wusul-core/webhook/cloudevent"
)

/* Small, focused interfaces
 * Each collaborator of the dispatcher is described by the behavior it needs
 */

// SubscriptionReader resolves delivery targets
type SubscriptionReader interface {
	/* FindActive returns the active subscriptions of accountID listening for eventType
	 * No match is an empty slice, not an error
	 */
	FindActive(ctx context.Context, accountID, eventType string) ([]Subscription, error)
	GetSubscription(ctx context.Context, id string) (Subscription, error)
}

// SubscriptionWriter manages an account's subscriptions
type SubscriptionWriter interface {
	Register(ctx context.Context, sub Subscription) error
	Unregister(ctx context.Context, accountID, id string) error
	ListByAccount(ctx context.Context, accountID string) ([]Subscription, error)
}

// SubscriptionRepository combines reads and writes
type SubscriptionRepository interface {
	SubscriptionReader
	SubscriptionWriter
}

// AttemptReader provides read access to delivery attempts
type AttemptReader interface {
	GetAttempt(ctx context.Context, id string) (DeliveryAttempt, error)
}

// AttemptWriter persists delivery attempts
type AttemptWriter interface {
	CreateAttempt(ctx context.Context, attempt DeliveryAttempt) error
	/* UpdateAttempt overwrites the mutable fields of an attempt
	 * Only the retry chain owning the attempt calls it
	 */
	UpdateAttempt(ctx context.Context, attempt DeliveryAttempt) error
}

// AttemptRepository combines reads and writes
type AttemptRepository interface {
	AttemptReader
	AttemptWriter
}

// RetryScheduler arranges for attemptID to be retried at due
type RetryScheduler interface {
	Schedule(ctx context.Context, attemptID string, due time.Time) error
}

// Job is one event waiting in the dispatch queue
type Job struct {
	MessageID string
	AccountID string
	Event     cloudevent.CloudEvent
}

// EventQueue hands events from business operations to dispatch workers
type EventQueue interface {
	Enqueue(ctx context.Context, accountID string, event cloudevent.CloudEvent) error
	/* Consume blocks until jobs are available or ctx is done
	 * An empty slice means nothing arrived in the poll window
	 */
	Consume(ctx context.Context, consumer string) ([]Job, error)
	Acknowledge(ctx context.Context, messageID string) error
}

// Heartbeater records that a worker is alive
type Heartbeater interface {
	Heartbeat(ctx context.Context, workerID, status string) error
}

// Observer is notified of delivery outcomes
type Observer interface {
	ObserveAttempt(ctx context.Context, eventType string, state State, duration time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(context.Context, string, State, time.Duration) {}
