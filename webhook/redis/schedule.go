package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/wusul-core/webhook"
	"github.com/redis/go-redis/v9"
)

/* Retries move between two sorted sets: retryKey scored by due time and
 * inflightKey scored by lease deadline. Moves run as scripts so an id is
 * always in at most one of them.
 */

// KEYS: retries, inflight. ARGV: now ms, lease deadline ms, limit
var claimScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[3])
for _, id in ipairs(ids) do
	redis.call('ZREM', KEYS[1], id)
	redis.call('ZADD', KEYS[2], ARGV[2], id)
end
return ids
`)

// KEYS: inflight, retries. ARGV: due ms, attempt hash prefix, ids...
// The stored next_attempt_at wins when it is later than due
var requeueScript = redis.NewScript(`
local moved = 0
for i = 3, #ARGV do
	local id = ARGV[i]
	if redis.call('ZREM', KEYS[1], id) == 1 then
		local due = tonumber(ARGV[1])
		local stored = tonumber(redis.call('HGET', ARGV[2] .. id, 'next_attempt_at') or '0') or 0
		if stored > due then
			due = stored
		end
		redis.call('ZADD', KEYS[2], due, id)
		moved = moved + 1
	end
end
return moved
`)

// KEYS: retries, inflight. ARGV: due ms, ids...
var adoptScript = redis.NewScript(`
local moved = 0
for i = 2, #ARGV do
	local id = ARGV[i]
	if not redis.call('ZSCORE', KEYS[1], id) and not redis.call('ZSCORE', KEYS[2], id) then
		redis.call('ZADD', KEYS[1], ARGV[1], id)
		moved = moved + 1
	end
end
return moved
`)

// Schedule records that attemptID is due at due
func (r *Repository) Schedule(ctx context.Context, attemptID string, due time.Time) error {
	err := r.client.ZAdd(ctx, retryKey, redis.Z{
		Score:  float64(due.UnixMilli()),
		Member: attemptID,
	}).Err()
	if err != nil {
		return fmt.Errorf("scheduling retry: %w", err)
	}
	return nil
}

/* ClaimDue leases attempt ids due at or before now
 * Each id moves from the schedule to the in-flight set in one script, so
 * concurrent sweepers never retry the same attempt twice
 */
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int64) ([]string, error) {
	if limit <= 0 {
		limit = -1
	}
	ids, err := claimScript.Run(ctx, r.client, []string{retryKey, inflightKey},
		now.UnixMilli(), now.Add(lease).UnixMilli(), limit).StringSlice()
	if err != nil && !isNil(err) {
		return nil, fmt.Errorf("claiming due retries: %w", err)
	}
	return ids, nil
}

// Release drops the lease on attemptID
func (r *Repository) Release(ctx context.Context, attemptID string) error {
	if err := r.client.ZRem(ctx, inflightKey, attemptID).Err(); err != nil {
		return fmt.Errorf("releasing retry: %w", err)
	}
	return nil
}

// Requeue moves a leased attempt back to the schedule, due no earlier than due
func (r *Repository) Requeue(ctx context.Context, attemptID string, due time.Time) error {
	if _, err := r.requeue(ctx, due, []string{attemptID}); err != nil {
		return err
	}
	return nil
}

/* Recover reschedules attempts that would otherwise never run again:
 * leases whose deadline has passed, and unfinished attempts overdue by
 * more than grace that sit in neither set
 */
func (r *Repository) Recover(ctx context.Context, now time.Time, grace time.Duration) (int, error) {
	expired, err := r.client.ZRangeByScore(ctx, inflightKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("reading expired leases: %w", err)
	}

	recovered := 0
	if len(expired) > 0 {
		n, err := r.requeue(ctx, now, expired)
		if err != nil {
			return 0, err
		}
		recovered += n
	}

	stranded, err := r.overdueAttempts(ctx, now.Add(-grace))
	if err != nil {
		return recovered, err
	}
	if len(stranded) == 0 {
		return recovered, nil
	}

	args := make([]interface{}, 0, len(stranded)+1)
	args = append(args, now.UnixMilli())
	for _, id := range stranded {
		args = append(args, id)
	}
	n, err := adoptScript.Run(ctx, r.client, []string{retryKey, inflightKey}, args...).Int()
	if err != nil {
		return recovered, fmt.Errorf("rescheduling stranded attempts: %w", err)
	}
	return recovered + n, nil
}

// RetryBacklog returns how many retries are scheduled
func (r *Repository) RetryBacklog(ctx context.Context) (int64, error) {
	n, err := r.client.ZCard(ctx, retryKey).Result()
	if err != nil {
		return 0, fmt.Errorf("counting scheduled retries: %w", err)
	}
	return n, nil
}

// DueBacklog returns how many scheduled retries are already due
func (r *Repository) DueBacklog(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.client.ZCount(ctx, retryKey, "-inf", strconv.FormatInt(now.UnixMilli(), 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting due retries: %w", err)
	}
	return n, nil
}

// InFlight returns how many retries are currently leased
func (r *Repository) InFlight(ctx context.Context) (int64, error) {
	n, err := r.client.ZCard(ctx, inflightKey).Result()
	if err != nil {
		return 0, fmt.Errorf("counting leased retries: %w", err)
	}
	return n, nil
}

func (r *Repository) requeue(ctx context.Context, due time.Time, ids []string) (int, error) {
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, due.UnixMilli(), hashPrefix+":")
	for _, id := range ids {
		args = append(args, id)
	}
	n, err := requeueScript.Run(ctx, r.client, []string{inflightKey, retryKey}, args...).Int()
	if err != nil {
		return 0, fmt.Errorf("requeueing retries: %w", err)
	}
	return n, nil
}

/* overdueAttempts scans attempt hashes for unfinished attempts that should
 * have run before cutoff: pending ones created earlier, retrying ones
 * whose next attempt was due earlier
 */
func (r *Repository) overdueAttempts(ctx context.Context, cutoff time.Time) ([]string, error) {
	limit := cutoff.UnixMilli()
	var overdue []string

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, hashPrefix+":*", scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning attempt keys: %w", err)
		}

		if len(keys) > 0 {
			pipe := r.client.Pipeline()
			cmds := make([]*redis.SliceCmd, len(keys))
			for i, key := range keys {
				cmds[i] = pipe.HMGet(ctx, key, "id", "state", "created_at", "next_attempt_at")
			}
			if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
				return nil, fmt.Errorf("reading attempt states: %w", err)
			}

			for _, cmd := range cmds {
				values, err := cmd.Result()
				if err != nil || len(values) < 4 {
					continue
				}
				id, _ := values[0].(string)
				state, _ := values[1].(string)
				created, _ := values[2].(string)
				nextAt, _ := values[3].(string)
				if id == "" {
					continue
				}

				switch webhook.NewState(state) {
				case webhook.Pending:
					if ms := parseInt64(created); ms > 0 && ms <= limit {
						overdue = append(overdue, id)
					}
				case webhook.Retrying:
					if ms := parseInt64(nextAt); ms <= limit {
						overdue = append(overdue, id)
					}
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return overdue, nil
		}
	}
}
