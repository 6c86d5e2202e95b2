package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/wusul-core/webhook"
	"github.com/marcelsud/wusul-core/webhook/cloudevent"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of the delivery-side stores
 * Hashes hold delivery attempts, a sorted set holds due retries,
 * a stream with a consumer group is the dispatch queue
 */

const (
	hashPrefix    = "delivery"                  // Hash naming: delivery:{attempt_id}
	retryKey      = "webhooks:retries"          // Sorted set of attempt ids scored by due time (unix ms)
	inflightKey   = "webhooks:retries:inflight" // Sorted set of leased attempt ids scored by lease deadline (unix ms)
	streamKey     = "webhooks:events"           // Dispatch queue
	consumerGroup = "webhook-workers"
	scanCount     = 1000
)

var errAttemptExists = errors.New("attempt already exists")

// Repository stores attempts without expiry unless WithAttemptTTL is set
type Repository struct {
	client     *redis.Client
	attemptTTL time.Duration
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return NewRepositoryFromClient(client), nil
}

// NewRepositoryFromClient wraps an existing client
func NewRepositoryFromClient(client *redis.Client) *Repository {
	return &Repository{
		client: client,
	}
}

/* WithAttemptTTL makes delivered and abandoned attempts expire after ttl
 * Zero or less keeps them forever
 */
func (r *Repository) WithAttemptTTL(ttl time.Duration) *Repository {
	if ttl < 0 {
		ttl = 0
	}
	r.attemptTTL = ttl
	return r
}

// CreateAttempt stores a new delivery attempt
func (r *Repository) CreateAttempt(ctx context.Context, a webhook.DeliveryAttempt) error {
	fields, err := attemptFields(a)
	if err != nil {
		return err
	}

	key := attemptKey(a.ID)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return errAttemptExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, errAttemptExists), errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("%w: %s", errAttemptExists, a.ID)
	case err != nil:
		return fmt.Errorf("storing attempt: %w", err)
	}
	return nil
}

// GetAttempt retrieves a delivery attempt by ID
func (r *Repository) GetAttempt(ctx context.Context, id string) (webhook.DeliveryAttempt, error) {
	data, err := r.client.HGetAll(ctx, attemptKey(id)).Result()
	if err != nil {
		return webhook.DeliveryAttempt{}, fmt.Errorf("getting attempt: %w", err)
	}
	if len(data) == 0 {
		return webhook.DeliveryAttempt{}, fmt.Errorf("attempt %s: %w", id, webhook.ErrNotFound)
	}
	return parseAttempt(data)
}

/* UpdateAttempt overwrites the attempt's fields
 * Final attempts leave the retry schedule, and expire only when a TTL is set
 */
func (r *Repository) UpdateAttempt(ctx context.Context, a webhook.DeliveryAttempt) error {
	key := attemptKey(a.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("checking attempt: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("attempt %s: %w", a.ID, webhook.ErrNotFound)
	}

	fields, err := attemptFields(a)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if a.State.IsFinal() {
		pipe.ZRem(ctx, retryKey, a.ID)
		if r.attemptTTL > 0 {
			pipe.Expire(ctx, key, r.attemptTTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating attempt: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (r *Repository) GetClient() *redis.Client {
	return r.client
}

// Helper functions

func attemptKey(id string) string {
	return fmt.Sprintf("%s:%s", hashPrefix, id)
}

func attemptFields(a webhook.DeliveryAttempt) (map[string]interface{}, error) {
	payload, err := a.Payload.Bytes()
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	return map[string]interface{}{
		"id":              a.ID,
		"subscription_id": a.SubscriptionID,
		"account_id":      a.AccountID,
		"event_type":      a.EventType,
		"url":             a.URL,
		"payload":         string(payload),
		"attempts":        a.Attempts,
		"state":           a.State.String(),
		"response_status": a.ResponseStatus,
		"response_body":   a.ResponseBody,
		"created_at":      formatTime(a.CreatedAt),
		"last_attempt_at": formatTime(a.LastAttemptAt),
		"delivered_at":    formatTime(a.DeliveredAt),
		"failed_at":       formatTime(a.FailedAt),
		"abandoned_at":    formatTime(a.AbandonedAt),
		"next_attempt_at": formatTime(a.NextAttemptAt),
	}, nil
}

func parseAttempt(data map[string]string) (webhook.DeliveryAttempt, error) {
	event, err := cloudevent.Parse([]byte(data["payload"]))
	if err != nil {
		return webhook.DeliveryAttempt{}, fmt.Errorf("parsing payload: %w", err)
	}

	return webhook.DeliveryAttempt{
		ID:             data["id"],
		SubscriptionID: data["subscription_id"],
		AccountID:      data["account_id"],
		EventType:      data["event_type"],
		URL:            data["url"],
		Payload:        event,
		Attempts:       int(parseInt64(data["attempts"])),
		State:          webhook.NewState(data["state"]),
		ResponseStatus: int(parseInt64(data["response_status"])),
		ResponseBody:   data["response_body"],
		CreatedAt:      parseTime(data["created_at"]),
		LastAttemptAt:  parseTime(data["last_attempt_at"]),
		DeliveredAt:    parseTime(data["delivered_at"]),
		FailedAt:       parseTime(data["failed_at"]),
		AbandonedAt:    parseTime(data["abandoned_at"]),
		NextAttemptAt:  parseTime(data["next_attempt_at"]),
	}, nil
}

// Timestamps are unix milliseconds; zero time is stored as 0
func formatTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func parseTime(s string) time.Time {
	ms := parseInt64(s)
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

var (
	_ webhook.AttemptRepository = (*Repository)(nil)
	_ webhook.RetryScheduler    = (*Repository)(nil)
	_ webhook.DueRetries        = (*Repository)(nil)
	_ webhook.EventQueue        = (*Repository)(nil)
	_ webhook.Heartbeater       = (*Repository)(nil)
)
