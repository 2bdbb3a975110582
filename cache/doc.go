// Package cache memoizes successful operation results.
//
// A Memoizer derives a key from an operation name and its input (SHA-256 of
// canonical JSON), serves fresh cached values without running the operation,
// and collapses concurrent misses on one key into a single invocation.
// Failures are never cached. Operations tagged as having side effects are
// skipped unless the Policy allows them.
//
//	memo, _ := cache.NewMemoizer(cache.NewMemoryCache(), cache.DefaultPolicy())
//	lookup := cache.Memoize(memo, cache.Meta{Name: "geo.lookup"}, ip, fetchGeo)
//	res := lookup(ctx)
//
// Cache is byte-oriented so external stores can back a Memoizer;
// MemoryCache is the in-process implementation.
package cache
