package webhook

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/marcelsud/wusul-core/webhook/cloudevent"
	"github.com/rs/zerolog"
)

// DefaultHeartbeatInterval keeps a worker visible; heartbeats expire after twice this
const DefaultHeartbeatInterval = 30 * time.Second

// EventDispatcher fans a queued event out to subscriptions
type EventDispatcher interface {
	DispatchEvent(ctx context.Context, accountID string, event cloudevent.CloudEvent)
}

// Worker consumes the dispatch queue and fans each event out
type Worker struct {
	ID                string
	Queue             EventQueue
	Dispatcher        EventDispatcher
	Heartbeats        Heartbeater
	HeartbeatInterval time.Duration
	Logger            zerolog.Logger

	status atomic.Value
}

// NewWorker creates a worker identified by id
func NewWorker(id string, queue EventQueue, dispatcher EventDispatcher, heartbeats Heartbeater, logger zerolog.Logger) *Worker {
	return &Worker{
		ID:                id,
		Queue:             queue,
		Dispatcher:        dispatcher,
		Heartbeats:        heartbeats,
		HeartbeatInterval: DefaultHeartbeatInterval,
		Logger:            logger.With().Str("worker_id", id).Logger(),
	}
}

/* Run processes jobs until ctx is cancelled
 * A job is acknowledged once its fan-out has settled, whatever the outcome
 */
func (w *Worker) Run(ctx context.Context) error {
	w.heartbeat(ctx, "idle")
	go w.keepAlive(ctx)

	w.Logger.Info().Msg("dispatch worker started")
	for {
		if ctx.Err() != nil {
			w.Logger.Info().Msg("dispatch worker stopped")
			return nil
		}

		jobs, err := w.Queue.Consume(ctx, w.ID)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.Logger.Error().Err(err).Msg("consuming dispatch queue")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, job := range jobs {
			if ctx.Err() != nil {
				// Left pending in the stream for another worker to claim
				break
			}
			w.Process(ctx, job)
		}
	}
}

/* Process dispatches one job and acknowledges it
 * A started job runs to completion even if ctx is cancelled meanwhile
 */
func (w *Worker) Process(ctx context.Context, job Job) {
	work := context.WithoutCancel(ctx)
	w.heartbeat(work, "processing")
	defer w.heartbeat(work, "idle")

	w.Dispatcher.DispatchEvent(work, job.AccountID, job.Event)
	if err := w.Queue.Acknowledge(work, job.MessageID); err != nil {
		w.Logger.Error().Err(err).Str("message_id", job.MessageID).Msg("acknowledging job")
	}
}

func (w *Worker) keepAlive(ctx context.Context) {
	interval := w.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			status, _ := w.status.Load().(string)
			w.heartbeat(ctx, status)
		}
	}
}

func (w *Worker) heartbeat(ctx context.Context, status string) {
	w.status.Store(status)
	if w.Heartbeats == nil {
		return
	}
	if err := w.Heartbeats.Heartbeat(ctx, w.ID, status); err != nil && ctx.Err() == nil {
		w.Logger.Warn().Err(err).Msg("sending heartbeat")
	}
}
