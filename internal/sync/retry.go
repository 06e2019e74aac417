package sync

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy yields the delay before the next restart of a live-sync loop.
// The engine ships with a fixed delay; the abstraction exists so growth
// policies can be swapped in without touching the sync loops.
type RetryPolicy interface {
	NextDelay() time.Duration
	Reset()
}

type backoffPolicy struct {
	b backoff.BackOff
}

// NewFixedDelayPolicy retries forever with a constant pause.
func NewFixedDelayPolicy(delay time.Duration) RetryPolicy {
	return &backoffPolicy{b: backoff.NewConstantBackOff(delay)}
}

// NewBackoffPolicy adapts any backoff strategy to a RetryPolicy.
func NewBackoffPolicy(b backoff.BackOff) RetryPolicy {
	return &backoffPolicy{b: b}
}

func (p *backoffPolicy) NextDelay() time.Duration {
	d := p.b.NextBackOff()
	if d == backoff.Stop {
		return 0
	}
	return d
}

func (p *backoffPolicy) Reset() {
	p.b.Reset()
}
