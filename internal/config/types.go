package config

import "sort"

// ResolvedConfig is an immutable mapping from configuration key to string
// value, produced once per run by Resolve. All accessors return copies so the
// snapshot cannot be mutated after resolution.
type ResolvedConfig struct {
	values map[string]string
}

// NewResolvedConfig creates a snapshot from the given values. The map is
// copied, so later mutation of the argument does not affect the snapshot.
func NewResolvedConfig(values map[string]string) ResolvedConfig {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return ResolvedConfig{values: copied}
}

// Get returns the value for key and whether it is present.
func (c ResolvedConfig) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns all configuration keys in ascending order.
func (c ResolvedConfig) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the full key/value mapping.
func (c ResolvedConfig) Map() map[string]string {
	copied := make(map[string]string, len(c.values))
	for k, v := range c.values {
		copied[k] = v
	}
	return copied
}

// Len returns the number of resolved keys.
func (c ResolvedConfig) Len() int {
	return len(c.values)
}
