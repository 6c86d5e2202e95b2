package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RetryFunc retries one delivery attempt
type RetryFunc func(ctx context.Context, attemptID string) error

/* TimerScheduler runs retries on in-process timers
 * Pending retries are lost when the process exits; use the Redis
 * schedule with a Sweeper where that matters
 */
type TimerScheduler struct {
	Logger       zerolog.Logger
	Now          func() time.Time
	RequeueDelay time.Duration

	mu      sync.Mutex
	retry   RetryFunc
	timers  map[string]*time.Timer
	stopped bool
}

// NewTimerScheduler creates an in-process scheduler
func NewTimerScheduler(logger zerolog.Logger) *TimerScheduler {
	return &TimerScheduler{
		Logger:       logger,
		Now:          time.Now,
		RequeueDelay: DefaultRequeueDelay,
		timers:       make(map[string]*time.Timer),
	}
}

// Handle sets the function invoked when a retry is due
func (s *TimerScheduler) Handle(retry RetryFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retry = retry
}

// Schedule arms a timer for attemptID, replacing any earlier one
func (s *TimerScheduler) Schedule(ctx context.Context, attemptID string, due time.Time) error {
	runCtx := context.WithoutCancel(ctx)
	delay := due.Sub(s.Now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return fmt.Errorf("scheduling retry %s: scheduler stopped", attemptID)
	}
	if t, ok := s.timers[attemptID]; ok {
		t.Stop()
	}
	s.timers[attemptID] = time.AfterFunc(delay, func() {
		s.fire(runCtx, attemptID)
	})
	return nil
}

func (s *TimerScheduler) fire(ctx context.Context, attemptID string) {
	s.mu.Lock()
	delete(s.timers, attemptID)
	retry := s.retry
	s.mu.Unlock()

	if retry == nil {
		s.Logger.Error().Str("delivery_id", attemptID).Msg("retry handler not set")
		return
	}
	if err := retry(ctx, attemptID); err != nil {
		delay := s.RequeueDelay
		if delay <= 0 {
			delay = DefaultRequeueDelay
		}
		s.Logger.Error().Err(err).Str("delivery_id", attemptID).Dur("requeue_in", delay).Msg("retrying delivery")
		if err := s.Schedule(ctx, attemptID, s.Now().Add(delay)); err != nil {
			s.Logger.Warn().Err(err).Str("delivery_id", attemptID).Msg("requeueing delivery")
		}
	}
}

// Pending returns how many retries are armed
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every pending timer and refuses new ones
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
