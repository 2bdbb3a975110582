package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/asyncops/async"
)

func BenchmarkCircuitBreaker_Execute_Closed(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 100, ResetTimeout: time.Minute})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Execute(ctx, succeeding)
	}
}

func BenchmarkCircuitBreaker_Concurrent(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 100, ResetTimeout: time.Minute})
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = cb.Execute(ctx, succeeding)
		}
	})
}

func BenchmarkRateLimiter_Allow(b *testing.B) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1e9, Burst: 1 << 20})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rl.Allow()
	}
}

func BenchmarkBulkhead_Execute(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 100})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bh.Execute(ctx, succeeding)
	}
}

func BenchmarkRun_NoPolicies(b *testing.B) {
	e := NewExecutor()
	ctx := context.Background()
	op := async.Value(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Run(ctx, e, op)
	}
}

func BenchmarkRun_AllPolicies(b *testing.B) {
	e := NewExecutor(
		WithRateLimiter(NewRateLimiter(RateLimiterConfig{Rate: 1e9, Burst: 1 << 20})),
		WithBulkhead(NewBulkhead(BulkheadConfig{MaxConcurrent: 100})),
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 100})),
		WithRetry(immediateRetry(3)),
		WithTimeout(time.Second),
	)
	ctx := context.Background()
	op := async.Value(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Run(ctx, e, op)
	}
}

func BenchmarkState_String(b *testing.B) {
	states := []State{StateClosed, StateOpen, StateHalfOpen}
	for i := 0; i < b.N; i++ {
		_ = states[i%len(states)].String()
	}
}
