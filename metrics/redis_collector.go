package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/wusul-core/webhook"
	webhookredis "github.com/marcelsud/wusul-core/webhook/redis"
	"github.com/redis/go-redis/v9"
)

const (
	attemptPattern = "delivery:*"
	scanCount      = 1000
)

// RedisCollector implements Collector on top of the delivery Redis repository
type RedisCollector struct {
	repo *webhookredis.Repository
	now  func() time.Time
}

// NewRedisCollector creates a new Redis metrics collector
func NewRedisCollector(repo *webhookredis.Repository) *RedisCollector {
	return &RedisCollector{
		repo: repo,
		now:  time.Now,
	}
}

// Collect gathers all metrics from Redis
func (c *RedisCollector) Collect(ctx context.Context) (Metrics, error) {
	queueLengths, err := c.GetQueueLengths(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue lengths: %w", err)
	}

	stateCounts, err := c.GetStateCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting state counts: %w", err)
	}

	throughput, err := c.GetThroughput(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting throughput: %w", err)
	}

	workers, err := c.GetActiveWorkers(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active workers: %w", err)
	}

	return Metrics{
		QueueLengths: queueLengths,
		StateCounts:  stateCounts,
		Throughput:   throughput,
		Workers:      workers,
		Timestamp:    c.now().UTC(),
	}, nil
}

// GetQueueLengths returns the dispatch stream length, the retry backlog and leased retries
func (c *RedisCollector) GetQueueLengths(ctx context.Context) (map[string]int64, error) {
	dispatch, err := c.repo.QueueLength(ctx)
	if err != nil {
		return nil, err
	}

	retries, err := c.repo.RetryBacklog(ctx)
	if err != nil {
		return nil, err
	}

	due, err := c.repo.DueBacklog(ctx, c.now())
	if err != nil {
		return nil, err
	}

	leased, err := c.repo.InFlight(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]int64{
		QueueDispatch:        dispatch,
		QueueRetries:         retries,
		QueueRetriesDue:      due,
		QueueRetriesInFlight: leased,
	}, nil
}

// GetStateCounts returns counts of stored attempts grouped by state
func (c *RedisCollector) GetStateCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(webhook.States()))
	for _, s := range webhook.States() {
		counts[s.String()] = 0
	}

	err := c.scanAttempts(ctx, func(state, _ string) {
		counts[state]++
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// GetThroughput counts deliveries completed in the last 1, 5 and 15 minutes
func (c *RedisCollector) GetThroughput(ctx context.Context) (ThroughputMetrics, error) {
	now := c.now()
	var throughput ThroughputMetrics

	err := c.scanAttempts(ctx, func(state, deliveredAt string) {
		if state != webhook.Delivered.String() {
			return
		}
		ms, err := strconv.ParseInt(deliveredAt, 10, 64)
		if err != nil || ms == 0 {
			return
		}
		throughput.Add(time.UnixMilli(ms), now)
	})
	if err != nil {
		return ThroughputMetrics{}, err
	}
	return throughput, nil
}

// GetActiveWorkers returns live workers grouped by status
func (c *RedisCollector) GetActiveWorkers(ctx context.Context) (map[string][]WorkerInfo, error) {
	heartbeats, err := c.repo.GetActiveWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting worker heartbeats: %w", err)
	}

	workers := make(map[string][]WorkerInfo)
	for _, hb := range heartbeats {
		workers[hb.Status] = append(workers[hb.Status], WorkerInfo{
			WorkerID:      hb.WorkerID,
			Status:        hb.Status,
			LastHeartbeat: hb.LastHeartbeat,
		})
	}
	return workers, nil
}

// scanAttempts walks every attempt hash, reading state and delivered_at in pipelined batches
func (c *RedisCollector) scanAttempts(ctx context.Context, fn func(state, deliveredAt string)) error {
	client := c.repo.GetClient()

	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, attemptPattern, scanCount).Result()
		if err != nil {
			return fmt.Errorf("scanning attempt keys: %w", err)
		}

		if len(keys) > 0 {
			pipe := client.Pipeline()
			cmds := make([]*redis.SliceCmd, len(keys))
			for i, key := range keys {
				cmds[i] = pipe.HMGet(ctx, key, "state", "delivered_at")
			}
			if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("executing pipeline: %w", err)
			}

			for _, cmd := range cmds {
				values, err := cmd.Result()
				if err != nil || len(values) < 2 {
					continue
				}
				state, ok := values[0].(string)
				if !ok {
					// Expired between scan and read
					continue
				}
				deliveredAt, _ := values[1].(string)
				fn(state, deliveredAt)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

var _ Collector = (*RedisCollector)(nil)
