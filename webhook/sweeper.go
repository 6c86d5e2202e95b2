package webhook

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultSweepInterval   = time.Second
	DefaultSweepBatch      = 100
	DefaultLease           = 5 * time.Minute
	DefaultRecoverInterval = time.Minute
	DefaultRequeueDelay    = 30 * time.Second
)

// DueRetries hands out retries whose due time has passed
type DueRetries interface {
	/* ClaimDue leases up to limit attempt ids due at or before now
	 * An id is returned to exactly one caller and stays leased until
	 * Release, Requeue or the lease running out
	 */
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int64) ([]string, error)

	// Release drops the lease once a retry has been recorded
	Release(ctx context.Context, attemptID string) error

	// Requeue drops the lease and schedules the attempt again no earlier than due
	Requeue(ctx context.Context, attemptID string, due time.Time) error

	/* Recover reschedules expired leases and unfinished attempts that are
	 * overdue by more than grace but sit in no schedule
	 */
	Recover(ctx context.Context, now time.Time, grace time.Duration) (int, error)
}

/* Sweeper polls the durable retry schedule and runs due retries
 * Several sweepers may share one schedule
 */
type Sweeper struct {
	Due             DueRetries
	Retry           RetryFunc
	Interval        time.Duration
	RecoverInterval time.Duration
	Lease           time.Duration
	RequeueDelay    time.Duration
	BatchSize       int64
	Concurrency     int
	Logger          zerolog.Logger
	Now             func() time.Time
}

// NewSweeper creates a sweeper running retry for each due attempt
func NewSweeper(due DueRetries, retry RetryFunc, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		Due:             due,
		Retry:           retry,
		Interval:        interval,
		RecoverInterval: DefaultRecoverInterval,
		Lease:           DefaultLease,
		RequeueDelay:    DefaultRequeueDelay,
		BatchSize:       DefaultSweepBatch,
		Concurrency:     DefaultConcurrency,
		Logger:          logger,
		Now:             time.Now,
	}
}

/* Run sweeps every Interval and recovers stranded retries every
 * RecoverInterval until ctx is cancelled
 */
func (s *Sweeper) Run(ctx context.Context) error {
	recoverEvery := s.RecoverInterval
	if recoverEvery <= 0 {
		recoverEvery = DefaultRecoverInterval
	}
	sweep := time.NewTicker(s.Interval)
	defer sweep.Stop()
	recovery := time.NewTicker(recoverEvery)
	defer recovery.Stop()

	s.Logger.Info().Dur("interval", s.Interval).Dur("recover_interval", recoverEvery).Msg("retry sweeper started")
	s.recover(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info().Msg("retry sweeper stopped")
			return nil
		case <-recovery.C:
			s.recover(ctx)
		case <-sweep.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.Logger.Error().Err(err).Msg("sweeping retries")
			}
		}
	}
}

/* Sweep claims one batch of due retries and runs them, returning how many ran
 * Claimed retries run to completion even if ctx is cancelled meanwhile
 */
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.Due.ClaimDue(ctx, s.Now(), s.lease(), s.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	work := context.WithoutCancel(ctx)
	p := pool.New().WithMaxGoroutines(concurrency)
	for _, id := range ids {
		p.Go(func() {
			s.run(work, id)
		})
	}
	p.Wait()
	return len(ids), nil
}

// Recover puts stranded retries back on the schedule, returning how many moved
func (s *Sweeper) Recover(ctx context.Context) (int, error) {
	return s.Due.Recover(ctx, s.Now(), s.lease())
}

func (s *Sweeper) run(ctx context.Context, id string) {
	log := s.Logger.With().Str("delivery_id", id).Logger()
	if err := s.Retry(ctx, id); err != nil {
		delay := s.RequeueDelay
		if delay <= 0 {
			delay = DefaultRequeueDelay
		}
		log.Error().Err(err).Dur("requeue_in", delay).Msg("retrying delivery")
		if err := s.Due.Requeue(ctx, id, s.Now().Add(delay)); err != nil {
			log.Error().Err(err).Msg("requeueing delivery, the lease will expire instead")
		}
		return
	}
	if err := s.Due.Release(ctx, id); err != nil {
		log.Warn().Err(err).Msg("releasing retry lease")
	}
}

func (s *Sweeper) recover(ctx context.Context) {
	n, err := s.Recover(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.Logger.Error().Err(err).Msg("recovering stranded retries")
		}
		return
	}
	if n > 0 {
		s.Logger.Warn().Int("recovered", n).Msg("stranded retries rescheduled")
	}
}

func (s *Sweeper) lease() time.Duration {
	if s.Lease <= 0 {
		return DefaultLease
	}
	return s.Lease
}
