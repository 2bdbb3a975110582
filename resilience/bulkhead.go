package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of operations running at once.
	// Default: 10
	MaxConcurrent int `yaml:"max_concurrent"`

	// MaxWait is how long to wait for a free slot.
	// Default: 0 (fail immediately)
	MaxWait time.Duration `yaml:"max_wait"`

	// Clock drives MaxWait. Default: the wall clock.
	Clock clockwork.Clock `yaml:"-"`
}

// Validate reports negative settings.
func (c BulkheadConfig) Validate() error {
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("%w: bulkhead max_concurrent %d is negative", ErrInvalidConfig, c.MaxConcurrent)
	}
	if c.MaxWait < 0 {
		return fmt.Errorf("%w: bulkhead max_wait %v is negative", ErrInvalidConfig, c.MaxWait)
	}
	return nil
}

// Bulkhead caps the number of concurrently running operations.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewBulkhead creates a bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Isolate wraps op so each invocation holds a bulkhead slot while it runs.
// When no slot frees up within MaxWait the invocation fails with
// ErrBulkheadFull without calling op.
func Isolate[T any](b *Bulkhead, op async.Operation[T]) async.Operation[T] {
	return func(ctx context.Context) result.Result[T] {
		if err := b.Acquire(ctx); err != nil {
			return result.Err[T](err)
		}
		defer b.Release()

		return async.Call(ctx, op)
	}
}

// Acquire takes a slot, waiting up to MaxWait. It returns ErrBulkheadFull
// when none frees up, or ctx.Err() if ctx is done first.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		b.acquired()
		return nil
	default:
	}

	if b.config.MaxWait <= 0 {
		b.reject()
		return ErrBulkheadFull
	}

	timer := b.config.Clock.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		b.acquired()
		return nil
	case <-timer.Chan():
		b.reject()
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (b *Bulkhead) Release() {
	select {
	case <-b.sem:
		b.mu.Lock()
		b.active--
		b.mu.Unlock()
	default:
	}
}

// Execute runs op within the bulkhead.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	return Isolate(b, errOperation(op))(ctx).Err()
}

func (b *Bulkhead) acquired() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
}

func (b *Bulkhead) reject() {
	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
}

// Metrics returns a snapshot of the bulkhead's counters.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected,
	}
}

// BulkheadMetrics contains bulkhead statistics.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}
