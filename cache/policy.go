package cache

import (
	"fmt"
	"time"
)

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL applied when a Memoize call gives none.
	// Zero disables caching.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// MaxTTL clamps every TTL. Zero means no maximum.
	MaxTTL time.Duration `yaml:"max_ttl"`

	// AllowUnsafe permits caching operations carrying an UnsafeTags tag.
	AllowUnsafe bool `yaml:"allow_unsafe"`
}

// DefaultPolicy returns DefaultTTL 5m, MaxTTL 1h, AllowUnsafe false.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 5 * time.Minute,
		MaxTTL:     time.Hour,
	}
}

// NoCachePolicy returns a policy that disables caching.
func NoCachePolicy() Policy {
	return Policy{}
}

// Validate reports negative TTLs.
func (p Policy) Validate() error {
	if p.DefaultTTL < 0 {
		return fmt.Errorf("%w: default_ttl %v is negative", ErrInvalidPolicy, p.DefaultTTL)
	}
	if p.MaxTTL < 0 {
		return fmt.Errorf("%w: max_ttl %v is negative", ErrInvalidPolicy, p.MaxTTL)
	}
	return nil
}

// ShouldCache reports whether the policy caches anything.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns override, or DefaultTTL when override <= 0, clamped
// to MaxTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
