package cache

import (
	"errors"
	"testing"
	"time"
)

func TestPolicies(t *testing.T) {
	if p := DefaultPolicy(); p.DefaultTTL != 5*time.Minute || p.MaxTTL != time.Hour || p.AllowUnsafe {
		t.Errorf("DefaultPolicy() = %+v", p)
	}
	if NoCachePolicy().ShouldCache() {
		t.Error("NoCachePolicy should not cache")
	}
	if !DefaultPolicy().ShouldCache() {
		t.Error("DefaultPolicy should cache")
	}
}

func TestPolicy_EffectiveTTL(t *testing.T) {
	p := Policy{DefaultTTL: time.Minute, MaxTTL: 10 * time.Minute}

	tests := []struct {
		name     string
		override time.Duration
		want     time.Duration
	}{
		{"default", 0, time.Minute},
		{"negative falls back", -time.Second, time.Minute},
		{"override", 5 * time.Minute, 5 * time.Minute},
		{"clamped", time.Hour, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EffectiveTTL(tt.override); got != tt.want {
				t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.override, got, tt.want)
			}
		})
	}

	unbounded := Policy{DefaultTTL: time.Minute}
	if got := unbounded.EffectiveTTL(24 * time.Hour); got != 24*time.Hour {
		t.Errorf("EffectiveTTL without MaxTTL = %v, want 24h", got)
	}
}

func TestPolicy_Validate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Errorf("DefaultPolicy().Validate() = %v", err)
	}
	for _, p := range []Policy{{DefaultTTL: -1}, {MaxTTL: -1}} {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidPolicy", p, err)
		}
	}
}

func TestDefaultSkipRule(t *testing.T) {
	tests := []struct {
		tags []string
		want bool
	}{
		{nil, false},
		{[]string{"read", "geo"}, false},
		{[]string{"read", "write"}, true},
		{[]string{"DELETE"}, true},
		{[]string{"Mutation"}, true},
	}

	for _, tt := range tests {
		if got := DefaultSkipRule(Meta{Name: "op", Tags: tt.tags}); got != tt.want {
			t.Errorf("DefaultSkipRule(%v) = %v, want %v", tt.tags, got, tt.want)
		}
	}
}
