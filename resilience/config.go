package resilience

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/asyncops/async"
)

// Config is the declarative form of an Executor. Sections left out of the
// document leave the corresponding policy disabled.
//
//	retry:
//	  max_attempts: 5
//	  initial_delay: 100ms
//	  max_delay: 2s
//	  backoff_factor: 2
//	  jitter: true
//	timeout: 750ms
//	bulkhead:
//	  max_concurrent: 8
//	circuit_breaker:
//	  max_failures: 3
//	  reset_timeout: 30s
//	rate_limit:
//	  rate: 50
//	  burst: 10
type Config struct {
	Retry          *async.RetryConfig    `yaml:"retry"`
	Timeout        time.Duration         `yaml:"timeout"`
	Bulkhead       *BulkheadConfig       `yaml:"bulkhead"`
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit      *RateLimiterConfig    `yaml:"rate_limit"`
}

// LoadConfig decodes a YAML document into a Config and validates it.
// Unknown keys are rejected. An empty document yields an empty Config.
// Durations use time.ParseDuration syntax ("250ms", "2s").
//
// Environment references ($VAR, ${VAR}) are expanded before decoding; a
// ${VAR} that is unset fails the load. Write $$ for a literal $.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	raw, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read: %w", ErrInvalidConfig, err)
	}
	doc, err := expandEnvStrict(string(raw))
	if err != nil {
		return Config{}, err
	}

	dec := yaml.NewDecoder(strings.NewReader(doc))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if cfg.Retry != nil {
		fillRetryDefaults(cfg.Retry)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fillRetryDefaults replaces zero-valued retry fields with the defaults of
// async.DefaultRetryConfig. A zero initial_delay is kept, as is jitter,
// which must be enabled explicitly.
func fillRetryDefaults(c *async.RetryConfig) {
	def := async.DefaultRetryConfig()
	if c.MaxAttempts == 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = def.BackoffFactor
	}
	if c.MaxDelay == 0 && c.InitialDelay > 0 {
		c.MaxDelay = max(def.MaxDelay, c.InitialDelay)
	}
}

// Validate checks every configured section.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout %v is negative", ErrInvalidConfig, c.Timeout)
	}
	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.Bulkhead != nil {
		if err := c.Bulkhead.Validate(); err != nil {
			return err
		}
	}
	if c.CircuitBreaker != nil {
		if err := c.CircuitBreaker.Validate(); err != nil {
			return err
		}
	}
	if c.RateLimit != nil {
		if err := c.RateLimit.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NewExecutorFromConfig builds an Executor for cfg. The clock, when given,
// is shared by every policy. Extra options are applied last.
func NewExecutorFromConfig(cfg Config, clock clockwork.Clock, opts ...ExecutorOption) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base []ExecutorOption
	if clock != nil {
		base = append(base, WithClock(clock))
	}
	if cfg.Retry != nil {
		base = append(base, WithRetry(*cfg.Retry))
	}
	if cfg.Timeout > 0 {
		base = append(base, WithTimeout(cfg.Timeout))
	}
	if cfg.Bulkhead != nil {
		bc := *cfg.Bulkhead
		bc.Clock = clock
		base = append(base, WithBulkhead(NewBulkhead(bc)))
	}
	if cfg.CircuitBreaker != nil {
		cc := *cfg.CircuitBreaker
		cc.Clock = clock
		base = append(base, WithCircuitBreaker(NewCircuitBreaker(cc)))
	}
	if cfg.RateLimit != nil {
		rc := *cfg.RateLimit
		rc.Clock = clock
		base = append(base, WithRateLimiter(NewRateLimiter(rc)))
	}

	return NewExecutor(append(base, opts...)...), nil
}
