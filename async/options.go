package async

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Option configures the clock and randomness used by a primitive.
type Option func(*options)

type options struct {
	clock  clockwork.Clock
	jitter JitterSource
}

// WithClock sets the clock used for backoff sleeps and timeout timers.
// Tests pass a clockwork fake clock; the default is the wall clock.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithJitter sets the random source used for backoff jitter.
func WithJitter(j JitterSource) Option {
	return func(o *options) {
		if j != nil {
			o.jitter = j
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:  clockwork.NewRealClock(),
		jitter: defaultJitter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Sleep blocks for d on the configured clock, returning ctx.Err() if ctx is
// done first. Non-positive durations return immediately.
func Sleep(ctx context.Context, d time.Duration, opts ...Option) error {
	o := newOptions(opts)
	return sleep(ctx, o.clock, d)
}

func sleep(ctx context.Context, clock clockwork.Clock, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
