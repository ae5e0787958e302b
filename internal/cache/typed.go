package cache

import (
	"encoding/json"
)

// JSON is a typed view over a Cache that stores values as JSON under a key prefix.
// Entries that fail to decode are treated as misses.
type JSON[T any] struct {
	inner  Cache
	prefix string
}

// NewJSON returns a typed view of c whose keys are namespaced by prefix.
func NewJSON[T any](c Cache, prefix string) *JSON[T] {
	return &JSON[T]{inner: c, prefix: prefix}
}

// Get decodes the value stored under key.
func (j *JSON[T]) Get(key string) (T, bool) {
	var zero T
	raw, ok := j.inner.Get(j.prefix + key)
	if !ok {
		return zero, false
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, false
	}
	return value, true
}

// Set encodes value and stores it under key. Values that cannot be encoded are skipped.
func (j *JSON[T]) Set(key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	j.inner.Set(j.prefix+key, raw)
}
