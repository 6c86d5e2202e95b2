package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/wusul-core/webhook/cloudevent"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const (
	// DefaultSource is the CloudEvents source attribute
	DefaultSource = "https://api.wusul.io"

	// DefaultConcurrency bounds parallel deliveries within one fan-out
	DefaultConcurrency = 16
)

// Sender performs one HTTP delivery and reports the subscriber's answer
type Sender interface {
	Send(ctx context.Context, url, secret string, event cloudevent.CloudEvent) (int, string, error)
}

// UseCase defines the dispatch operations used by the API and workers
type UseCase interface {
	Publish(ctx context.Context, accountID, eventType string, data any) (cloudevent.CloudEvent, error)
	Dispatch(ctx context.Context, accountID, eventType string, data any) error
	DispatchEvent(ctx context.Context, accountID string, event cloudevent.CloudEvent)
	Retry(ctx context.Context, attemptID string) error
}

/* Dispatcher fans events out to subscriptions and drives each delivery
 * attempt through Pending -> Retrying -> Delivered/Abandoned
 * Uses pointer semantics as it's an API, not data
 */
type Dispatcher struct {
	Subscriptions SubscriptionReader
	Attempts      AttemptRepository
	Scheduler     RetryScheduler
	Sender        Sender
	Queue         EventQueue
	Policy        RetryPolicy
	Source        string
	Concurrency   int
	Observer      Observer
	Logger        zerolog.Logger
	Now           func() time.Time
}

// NewDispatcher creates a dispatcher with the default retry policy
func NewDispatcher(subs SubscriptionReader, attempts AttemptRepository, scheduler RetryScheduler, sender Sender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		Subscriptions: subs,
		Attempts:      attempts,
		Scheduler:     scheduler,
		Sender:        sender,
		Policy:        DefaultRetryPolicy(),
		Source:        DefaultSource,
		Concurrency:   DefaultConcurrency,
		Observer:      nopObserver{},
		Logger:        logger,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

/* Publish builds the event and hands it to the dispatch queue
 * The caller's operation is complete once Publish returns; delivery happens in a worker
 */
func (d *Dispatcher) Publish(ctx context.Context, accountID, eventType string, data any) (cloudevent.CloudEvent, error) {
	if d.Queue == nil {
		return cloudevent.CloudEvent{}, fmt.Errorf("dispatch queue is not configured")
	}
	event, err := cloudevent.New(d.Source, eventType, data)
	if err != nil {
		return cloudevent.CloudEvent{}, fmt.Errorf("building event: %w", err)
	}
	if err := d.Queue.Enqueue(ctx, accountID, event); err != nil {
		return cloudevent.CloudEvent{}, fmt.Errorf("enqueueing event: %w", err)
	}
	return event, nil
}

/* Dispatch builds one CloudEvent and delivers it to every matching subscription
 * Only an invalid event is reported; delivery failures are logged
 */
func (d *Dispatcher) Dispatch(ctx context.Context, accountID, eventType string, data any) error {
	event, err := cloudevent.New(d.Source, eventType, data)
	if err != nil {
		return fmt.Errorf("building event: %w", err)
	}
	d.DispatchEvent(ctx, accountID, event)
	return nil
}

// DispatchEvent fans event out and waits for every first attempt to settle
func (d *Dispatcher) DispatchEvent(ctx context.Context, accountID string, event cloudevent.CloudEvent) {
	log := d.Logger.With().
		Str("account_id", accountID).
		Str("event_type", event.Type).
		Str("event_id", event.ID).
		Logger()

	subs, err := d.Subscriptions.FindActive(ctx, accountID, event.Type)
	if err != nil {
		log.Error().Err(err).Msg("finding subscriptions")
		return
	}
	if len(subs) == 0 {
		log.Debug().Msg("no matching subscriptions")
		return
	}

	p := pool.New().WithErrors().WithMaxGoroutines(d.concurrency())
	for _, sub := range subs {
		p.Go(func() error {
			if _, err := d.Deliver(ctx, sub, event); err != nil {
				return fmt.Errorf("subscription %s: %w", sub.ID, err)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		log.Error().Err(err).Int("subscriptions", len(subs)).Msg("fan-out finished with errors")
		return
	}
	log.Debug().Int("subscriptions", len(subs)).Msg("fan-out finished")
}

// Deliver creates the attempt record for sub and makes the first attempt
func (d *Dispatcher) Deliver(ctx context.Context, sub Subscription, event cloudevent.CloudEvent) (DeliveryAttempt, error) {
	attempt := NewDeliveryAttempt(uuid.NewString(), sub, event, d.Now())
	if err := d.Attempts.CreateAttempt(ctx, attempt); err != nil {
		return DeliveryAttempt{}, fmt.Errorf("creating attempt: %w", err)
	}
	return d.AttemptDelivery(ctx, attempt, sub.Secret)
}

/* AttemptDelivery sends the attempt's event once and records the outcome
 * The incremented attempt count is persisted before the send, and on
 * failure the attempt is persisted before the retry is scheduled
 */
func (d *Dispatcher) AttemptDelivery(ctx context.Context, attempt DeliveryAttempt, secret string) (DeliveryAttempt, error) {
	log := d.Logger.With().
		Str("delivery_id", attempt.ID).
		Str("subscription_id", attempt.SubscriptionID).
		Str("account_id", attempt.AccountID).
		Str("event_type", attempt.EventType).
		Str("url", attempt.URL).
		Logger()

	start := d.Now()
	attempt.begin(start)
	if err := d.Attempts.UpdateAttempt(ctx, attempt); err != nil {
		return attempt, fmt.Errorf("recording attempt: %w", err)
	}

	status, body, sendErr := d.Sender.Send(ctx, attempt.URL, secret, attempt.Payload)
	now := d.Now()

	if sendErr == nil && Successful(status) {
		attempt.succeed(now, status, body)
		if err := d.Attempts.UpdateAttempt(ctx, attempt); err != nil {
			return attempt, fmt.Errorf("recording delivery: %w", err)
		}
		d.observe(ctx, attempt, now.Sub(start))
		log.Info().Int("status", status).Int("attempts", attempt.Attempts).Msg("webhook delivered")
		return attempt, nil
	}

	attempt.fail(now, status, body)
	if sendErr != nil {
		log.Error().Err(sendErr).Int("attempts", attempt.Attempts).Msg("webhook delivery failed")
	} else {
		log.Warn().Int("status", status).Int("attempts", attempt.Attempts).Msg("webhook rejected")
	}

	if d.Policy.Abandon(attempt.Attempts, attempt.CreatedAt, now) {
		return d.abandon(ctx, attempt, now, start)
	}

	delay := d.Policy.Backoff(attempt.Attempts)
	attempt.NextAttemptAt = now.Add(delay)
	if err := d.Attempts.UpdateAttempt(ctx, attempt); err != nil {
		return attempt, fmt.Errorf("recording failure: %w", err)
	}
	d.observe(ctx, attempt, now.Sub(start))

	if err := d.Scheduler.Schedule(ctx, attempt.ID, attempt.NextAttemptAt); err != nil {
		return attempt, fmt.Errorf("scheduling retry: %w", err)
	}
	log.Debug().Int64("delay_ms", delay.Milliseconds()).Int("attempts", attempt.Attempts).Msg("retry scheduled")
	return attempt, nil
}

/* Retry reloads a scheduled attempt and makes the next attempt
 * Attempts already final are ignored so duplicate triggers are harmless
 */
func (d *Dispatcher) Retry(ctx context.Context, attemptID string) error {
	attempt, err := d.Attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("loading attempt: %w", err)
	}
	if attempt.State.IsFinal() {
		return nil
	}

	now := d.Now()
	sub, err := d.Subscriptions.GetSubscription(ctx, attempt.SubscriptionID)
	switch {
	case errors.Is(err, ErrNotFound):
		_, err = d.abandon(ctx, attempt, now, now)
		return err
	case err != nil:
		return fmt.Errorf("loading subscription: %w", err)
	case !sub.IsActive:
		_, err = d.abandon(ctx, attempt, now, now)
		return err
	}

	if d.Policy.Abandon(attempt.Attempts, attempt.CreatedAt, now) {
		_, err = d.abandon(ctx, attempt, now, now)
		return err
	}

	if _, err := d.AttemptDelivery(ctx, attempt, sub.Secret); err != nil {
		return err
	}
	return nil
}

func (d *Dispatcher) abandon(ctx context.Context, attempt DeliveryAttempt, now, start time.Time) (DeliveryAttempt, error) {
	attempt.abandon(now)
	if err := d.Attempts.UpdateAttempt(ctx, attempt); err != nil {
		return attempt, fmt.Errorf("recording abandonment: %w", err)
	}
	d.observe(ctx, attempt, now.Sub(start))
	d.Logger.Info().
		Str("delivery_id", attempt.ID).
		Str("subscription_id", attempt.SubscriptionID).
		Str("account_id", attempt.AccountID).
		Str("event_type", attempt.EventType).
		Int("attempts", attempt.Attempts).
		Msg("webhook abandoned")
	return attempt, nil
}

func (d *Dispatcher) observe(ctx context.Context, attempt DeliveryAttempt, elapsed time.Duration) {
	if d.Observer == nil {
		return
	}
	d.Observer.ObserveAttempt(ctx, attempt.EventType, attempt.State, elapsed)
}

func (d *Dispatcher) concurrency() int {
	if d.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return d.Concurrency
}
