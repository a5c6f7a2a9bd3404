package worker

import (
	"time"

	"washify/internal/config"
)

const (
	defaultMaxRetries   = 5
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = time.Minute
)

// RetryPolicy describes how a failed sync task is rescheduled: the delay
// grows by BackoffFactor per attempt and is capped at MaxDelay. After
// MaxRetries attempts the task is dead-lettered.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// RetryPolicyFromConfig maps worker settings onto a backoff policy.
func RetryPolicyFromConfig(cfg config.WorkerConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  cfg.BaseDelay,
		MaxDelay:      cfg.MaxDelay,
		BackoffFactor: 2,
	}
}

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = defaultMaxRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = defaultInitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = defaultMaxDelay
	}
	if r.BackoffFactor < 1 {
		r.BackoffFactor = 2
	}
	return r
}

// Exhausted reports whether attempt (1-based) used up the retry budget.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= r.withDefaults().MaxRetries
}

// NextDelay returns the wait before attempt+1. Attempts below 1 count as 1.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	p := r.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	d := p.InitialDelay
	for i := 1; i < attempt && d < p.MaxDelay; i++ {
		d = time.Duration(float64(d) * p.BackoffFactor)
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}
