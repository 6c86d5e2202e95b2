package webhook

import "time"

const (
	DefaultMaxAttempts = 10
	DefaultTimeout     = 6 * time.Hour
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = time.Hour
)

// RetryPolicy bounds the retry state machine
type RetryPolicy struct {
	MaxAttempts int
	Timeout     time.Duration
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns 10 attempts within 6 hours, 1s doubling up to 1h
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Timeout:     DefaultTimeout,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// NewRetryPolicy builds a policy from configured attempts and timeout hours
func NewRetryPolicy(maxAttempts, timeoutHours int) RetryPolicy {
	p := DefaultRetryPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if timeoutHours > 0 {
		p.Timeout = time.Duration(timeoutHours) * time.Hour
	}
	return p
}

// Backoff returns min(BaseDelay * 2^attempts, MaxDelay)
func (p RetryPolicy) Backoff(attempts int) time.Duration {
	base, maximum := p.BaseDelay, p.MaxDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if maximum <= 0 {
		maximum = DefaultMaxDelay
	}
	if attempts < 0 {
		attempts = 0
	}
	delay := base
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= maximum {
			return maximum
		}
	}
	if delay > maximum {
		return maximum
	}
	return delay
}

// Abandon reports whether no further attempt may be made
func (p RetryPolicy) Abandon(attempts int, createdAt, now time.Time) bool {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return attempts >= maxAttempts || now.Sub(createdAt) >= timeout
}
