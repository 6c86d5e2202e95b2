package metrics

import (
	"context"
	"time"
)

// Queue names reported in Metrics.QueueLengths
const (
	QueueDispatch        = "dispatch"
	QueueRetries         = "retries"
	QueueRetriesDue      = "retries_due"
	QueueRetriesInFlight = "retries_inflight"
)

// Metrics represents the current state of webhook delivery.
type Metrics struct {
	// QueueLengths maps queue name to the number of entries waiting in it
	QueueLengths map[string]int64 `json:"queue_lengths"`

	// StateCounts maps delivery state name to the number of stored attempts in it
	StateCounts map[string]int64 `json:"state_counts"`

	// Throughput represents deliveries completed per time window
	Throughput ThroughputMetrics `json:"throughput"`

	// Workers maps worker status to the workers currently reporting it
	Workers map[string][]WorkerInfo `json:"workers"`

	Timestamp time.Time `json:"timestamp"`
}

// ThroughputMetrics represents deliveries completed over different time windows.
type ThroughputMetrics struct {
	LastMinute         int64 `json:"last_minute"`
	LastFiveMinutes    int64 `json:"last_five_minutes"`
	LastFifteenMinutes int64 `json:"last_fifteen_minutes"`
}

// Add counts a delivery that completed at deliveredAt
func (t *ThroughputMetrics) Add(deliveredAt, now time.Time) {
	age := now.Sub(deliveredAt)
	if age < 0 || age > 15*time.Minute {
		return
	}
	t.LastFifteenMinutes++
	if age <= 5*time.Minute {
		t.LastFiveMinutes++
	}
	if age <= time.Minute {
		t.LastMinute++
	}
}

// WorkerInfo represents a worker with a live heartbeat.
type WorkerInfo struct {
	WorkerID      string    `json:"worker_id"`
	Status        string    `json:"status"` // "idle", "processing"
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Collector gathers delivery metrics from the backing store.
type Collector interface {
	Collect(ctx context.Context) (Metrics, error)
	GetQueueLengths(ctx context.Context) (map[string]int64, error)
	GetStateCounts(ctx context.Context) (map[string]int64, error)
	GetThroughput(ctx context.Context) (ThroughputMetrics, error)
	GetActiveWorkers(ctx context.Context) (map[string][]WorkerInfo, error)
}
