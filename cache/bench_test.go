package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonwraymond/asyncops/result"
)

func BenchmarkKeyer_Key(b *testing.B) {
	keyer := NewDefaultKeyer()
	input := map[string]any{
		"query":   "async coordination",
		"limit":   25,
		"filters": []any{"go", map[string]any{"min": 1, "max": 9}},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = keyer.Key("search", input)
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte(`{"city":"Lisbon"}`), time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(ctx, "k")
	}
}

func BenchmarkMemoryCache_SetParallel(b *testing.B) {
	c := NewMemoryCache()
	ctx := context.Background()
	value := []byte("value")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = c.Set(ctx, fmt.Sprintf("k%d", i%64), value, time.Hour)
			i++
		}
	})
}

func BenchmarkMemoize_Hit(b *testing.B) {
	m, _ := NewMemoizer(NewMemoryCache(), DefaultPolicy())
	op := Memoize(m, Meta{Name: "bench"}, "in", func(ctx context.Context) result.Result[geo] {
		return result.Ok(geo{City: "Lisbon", Country: "PT"})
	})
	ctx := context.Background()
	op(ctx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = op(ctx)
	}
}
