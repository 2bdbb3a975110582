package async

import (
	"context"
	"testing"
	"time"
)

func BenchmarkComputeDelay(b *testing.B) {
	cfg := DefaultRetryConfig()
	for i := 0; i < b.N; i++ {
		_ = ComputeDelay(i%10, cfg, nil)
	}
}

func BenchmarkCall(b *testing.B) {
	ctx := context.Background()
	op := Value(1)
	for i := 0; i < b.N; i++ {
		_ = Call(ctx, op)
	}
}

func BenchmarkParallel(b *testing.B) {
	ctx := context.Background()
	ops := make([]Operation[int], 64)
	for i := range ops {
		ops[i] = Value(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parallel(ctx, ops, 8)
	}
}

func BenchmarkWithTimeout(b *testing.B) {
	ctx := context.Background()
	op := Value(1)
	for i := 0; i < b.N; i++ {
		_ = WithTimeout(ctx, op, time.Second)
	}
}

func BenchmarkDeferred(b *testing.B) {
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		d, resolve, _ := NewDeferred[int]()
		resolve(i)
		_ = d.Await(ctx)
	}
}
