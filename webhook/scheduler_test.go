package webhook_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcelsud/wusul-core/webhook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerScheduler(t *testing.T) {
	t.Run("success - fires once when due", func(t *testing.T) {
		s := webhook.NewTimerScheduler(zerolog.Nop())
		fired := make(chan string, 2)
		s.Handle(func(ctx context.Context, id string) error {
			fired <- id
			return nil
		})

		require.NoError(t, s.Schedule(context.Background(), "del-1", time.Now().Add(20*time.Millisecond)))
		assert.Equal(t, 1, s.Pending())

		select {
		case id := <-fired:
			assert.Equal(t, "del-1", id)
		case <-time.After(time.Second):
			t.Fatal("retry never fired")
		}
		assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("success - cancelled caller context does not cancel the retry", func(t *testing.T) {
		s := webhook.NewTimerScheduler(zerolog.Nop())
		fired := make(chan error, 1)
		s.Handle(func(ctx context.Context, id string) error {
			fired <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, s.Schedule(ctx, "del-1", time.Now()))
		cancel()

		select {
		case err := <-fired:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("retry never fired")
		}
	})

	t.Run("rescheduling replaces the earlier timer", func(t *testing.T) {
		s := webhook.NewTimerScheduler(zerolog.Nop())
		s.Handle(func(ctx context.Context, id string) error { return errors.New("ignored") })

		require.NoError(t, s.Schedule(context.Background(), "del-1", time.Now().Add(time.Hour)))
		require.NoError(t, s.Schedule(context.Background(), "del-1", time.Now().Add(2*time.Hour)))
		assert.Equal(t, 1, s.Pending())

		s.Stop()
		assert.Equal(t, 0, s.Pending())
	})
}

func TestTimerScheduler_FailedRetryIsRearmed(t *testing.T) {
	s := webhook.NewTimerScheduler(zerolog.Nop())
	s.RequeueDelay = 10 * time.Millisecond
	defer s.Stop()

	calls := make(chan int, 3)
	n := 0
	s.Handle(func(ctx context.Context, id string) error {
		n++
		calls <- n
		if n == 1 {
			return errors.New("redis down")
		}
		return nil
	})

	require.NoError(t, s.Schedule(context.Background(), "del-1", time.Now()))

	for want := 1; want <= 2; want++ {
		select {
		case got := <-calls:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("retry %d never fired", want)
		}
	}
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestTimerScheduler_StoppedRefusesRetries(t *testing.T) {
	s := webhook.NewTimerScheduler(zerolog.Nop())
	s.Stop()
	assert.Error(t, s.Schedule(context.Background(), "del-1", time.Now()))
	assert.Equal(t, 0, s.Pending())
}
