package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThroughputMetrics_Add(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var tp ThroughputMetrics
	tp.Add(now.Add(-30*time.Second), now)
	tp.Add(now.Add(-3*time.Minute), now)
	tp.Add(now.Add(-10*time.Minute), now)
	tp.Add(now.Add(-20*time.Minute), now)
	tp.Add(now.Add(time.Minute), now)

	assert.Equal(t, ThroughputMetrics{
		LastMinute:         1,
		LastFiveMinutes:    2,
		LastFifteenMinutes: 3,
	}, tp)
}
