package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/wusul-core/webhook"
	"github.com/marcelsud/wusul-core/webhook/cloudevent"
	"github.com/redis/go-redis/v9"
)

const (
	consumeBatch = 10
	consumeBlock = 1 * time.Second // Shorter timeout for better responsiveness
	// Messages left pending this long by a dead consumer are taken over
	claimIdle = 5 * time.Minute
)

// Enqueue appends an event to the dispatch stream
func (r *Repository) Enqueue(ctx context.Context, accountID string, event cloudevent.CloudEvent) error {
	body, err := event.Bytes()
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := r.ensureGroup(ctx); err != nil {
		return err
	}

	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: map[string]interface{}{
			"account_id": accountID,
			"event_id":   event.ID,
			"event":      string(body),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}
	return nil
}

/* Consume reads jobs for consumer from the dispatch stream
 * Stale messages abandoned by other consumers are reclaimed first
 */
func (r *Repository) Consume(ctx context.Context, consumer string) ([]webhook.Job, error) {
	if err := r.ensureGroup(ctx); err != nil {
		return nil, err
	}

	stale, _, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   streamKey,
		Group:    consumerGroup,
		Consumer: consumer,
		MinIdle:  claimIdle,
		Start:    "0-0",
		Count:    consumeBatch,
	}).Result()
	if err != nil && !isNil(err) {
		return nil, fmt.Errorf("reclaiming stale messages: %w", err)
	}
	if len(stale) > 0 {
		return r.toJobs(ctx, stale), nil
	}

	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: consumer,
		Streams:  []string{streamKey, ">"},
		Count:    consumeBatch,
		Block:    consumeBlock,
	}).Result()
	if isNil(err) {
		// No messages available
		return []webhook.Job{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}
	if len(streams) == 0 {
		return []webhook.Job{}, nil
	}

	return r.toJobs(ctx, streams[0].Messages), nil
}

// Acknowledge marks a job as processed and drops it from the stream
func (r *Repository) Acknowledge(ctx context.Context, messageID string) error {
	pipe := r.client.TxPipeline()
	pipe.XAck(ctx, streamKey, consumerGroup, messageID)
	pipe.XDel(ctx, streamKey, messageID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("acknowledging message: %w", err)
	}
	return nil
}

// QueueLength returns how many events wait in the dispatch stream
func (r *Repository) QueueLength(ctx context.Context) (int64, error) {
	n, err := r.client.XLen(ctx, streamKey).Result()
	if err != nil && !isNil(err) {
		return 0, fmt.Errorf("reading stream length: %w", err)
	}
	return n, nil
}

func (r *Repository) ensureGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, streamKey, consumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

func (r *Repository) toJobs(ctx context.Context, msgs []redis.XMessage) []webhook.Job {
	jobs := make([]webhook.Job, 0, len(msgs))
	for _, msg := range msgs {
		accountID, _ := msg.Values["account_id"].(string)
		body, _ := msg.Values["event"].(string)

		event, err := cloudevent.Parse([]byte(body))
		if err != nil || accountID == "" {
			// Poison message: drop it so it is not redelivered forever
			_ = r.Acknowledge(ctx, msg.ID)
			continue
		}

		jobs = append(jobs, webhook.Job{
			MessageID: msg.ID,
			AccountID: accountID,
			Event:     event,
		})
	}
	return jobs
}
