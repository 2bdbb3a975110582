package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Keyer derives cache keys from an operation name and its input.
//
// Contract:
// - Determinism: equal inputs produce equal keys regardless of map order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(name string, input any) (string, error)
}

// DefaultKeyer generates SHA-256 based keys of the form
// memo:<name>:<hash>, where hash is the first 16 hex characters of the
// digest of the input's canonical JSON.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

func (k *DefaultKeyer) Key(name string, input any) (string, error) {
	canonical, err := canonicalize(input)
	if err != nil {
		return "", fmt.Errorf("cache: canonicalize input: %w", err)
	}

	sum := sha256.Sum256(canonical)
	key := "memo:" + name + ":" + hex.EncodeToString(sum[:8])
	if err := ValidateKey(key); err != nil {
		return "", fmt.Errorf("%w: operation name %q", err, name)
	}
	return key, nil
}

// canonicalize encodes v as JSON with object keys sorted at every level of
// map[string]any and []any nesting.
func canonicalize(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	out := []byte{'{'}
	for i, k := range slices.Sorted(maps.Keys(m)) {
		if i > 0 {
			out = append(out, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, kb...)
		out = append(out, ':')
		out = append(out, vb...)
	}
	return append(out, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	out := []byte{'['}
	for i, v := range s {
		if i > 0 {
			out = append(out, ',')
		}
		vb, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, vb...)
	}
	return append(out, ']'), nil
}

var _ Keyer = (*DefaultKeyer)(nil)
