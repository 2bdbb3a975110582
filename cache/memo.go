package cache

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/asyncops/async"
	"github.com/jonwraymond/asyncops/result"
)

// Meta identifies a memoized operation.
type Meta struct {
	Name string
	Tags []string

	// TTL overrides Policy.DefaultTTL when positive. It is still clamped
	// to Policy.MaxTTL.
	TTL time.Duration
}

// SkipRule reports whether an operation must not be cached.
type SkipRule func(meta Meta) bool

// UnsafeTags mark operations with side effects.
var UnsafeTags = []string{"write", "danger", "unsafe", "mutation", "delete"}

// DefaultSkipRule skips operations carrying any of UnsafeTags, compared
// case-insensitively.
func DefaultSkipRule(meta Meta) bool {
	return slices.ContainsFunc(meta.Tags, func(tag string) bool {
		return slices.Contains(UnsafeTags, strings.ToLower(tag))
	})
}

// Memoizer caches successful operation results.
//
// Contract:
//   - Concurrency: safe for concurrent use. Concurrent misses on one key share
//     a single invocation. It runs detached from the first caller's
//     cancellation; each caller stops waiting when its own ctx is done.
//   - Errors: failures are returned to every waiting caller and never stored.
type Memoizer struct {
	cache    Cache
	keyer    Keyer
	policy   Policy
	skipRule SkipRule

	group singleflight.Group
}

// Option configures a Memoizer.
type Option func(*Memoizer)

// WithKeyer replaces the DefaultKeyer.
func WithKeyer(k Keyer) Option {
	return func(m *Memoizer) {
		if k != nil {
			m.keyer = k
		}
	}
}

// WithSkipRule replaces DefaultSkipRule.
func WithSkipRule(rule SkipRule) Option {
	return func(m *Memoizer) {
		if rule != nil {
			m.skipRule = rule
		}
	}
}

// NewMemoizer creates a Memoizer storing results in c.
func NewMemoizer(c Cache, policy Policy, opts ...Option) (*Memoizer, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	m := &Memoizer{
		cache:    c,
		keyer:    NewDefaultKeyer(),
		policy:   policy,
		skipRule: DefaultSkipRule,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Memoize wraps op so a fresh cached value for (meta.Name, input) is
// returned without calling op. On a miss op runs through async.Call and a
// success is JSON-encoded into the cache. Operations the policy or skip rule
// excludes, and inputs the keyer cannot encode, run uncached.
func Memoize[T any](m *Memoizer, meta Meta, input any, op async.Operation[T]) async.Operation[T] {
	return func(ctx context.Context) result.Result[T] {
		key, ok := m.key(meta, input)
		if !ok {
			return async.Call(ctx, op)
		}

		if v, ok := loadCached[T](ctx, m.cache, key); ok {
			return result.Ok(v)
		}
		if err := ctx.Err(); err != nil {
			return result.Err[T](err)
		}

		ch := m.group.DoChan(key, func() (any, error) {
			shared := context.WithoutCancel(ctx)
			v, err := async.Call(shared, op).Get()
			if err != nil {
				return nil, err
			}
			m.store(shared, key, meta, v)
			return v, nil
		})

		select {
		case r := <-ch:
			if r.Err != nil {
				return result.Err[T](r.Err)
			}
			if r.Val == nil {
				var zero T
				return result.Ok(zero)
			}
			if v, ok := r.Val.(T); ok {
				return result.Ok(v)
			}
			// Another caller shared the key with a different result type.
			return async.Call(ctx, op)
		case <-ctx.Done():
			return result.Err[T](ctx.Err())
		}
	}
}

// Invalidate removes the cached result for (meta.Name, input).
func (m *Memoizer) Invalidate(ctx context.Context, meta Meta, input any) error {
	key, err := m.keyer.Key(meta.Name, input)
	if err != nil {
		return err
	}
	m.group.Forget(key)
	return m.cache.Delete(ctx, key)
}

func (m *Memoizer) key(meta Meta, input any) (string, bool) {
	if !m.policy.ShouldCache() {
		return "", false
	}
	if !m.policy.AllowUnsafe && m.skipRule(meta) {
		return "", false
	}
	key, err := m.keyer.Key(meta.Name, input)
	if err != nil {
		return "", false
	}
	return key, true
}

func (m *Memoizer) store(ctx context.Context, key string, meta Meta, v any) {
	ttl := m.policy.EffectiveTTL(meta.TTL)
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = m.cache.Set(ctx, key, data, ttl)
}

func loadCached[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	data, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		_ = c.Delete(ctx, key)
		return v, false
	}
	return v, true
}
