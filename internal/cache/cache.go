package cache

// EvictCallback is invoked with the key (and, when the backend can provide it, the value)
// of every entry pushed out by the size limit. Redis reports keys only.
type EvictCallback func(key string, value []byte)

// Logger receives errors from cache backends that cannot return them to the caller.
type Logger interface {
	Error(msg string, err error)
}

// Cache is a size-bounded, TTL-bound byte store. The backend client keeps encoded
// responses of public endpoints here; user data never goes through it.
type Cache interface {
	// Get returns the stored value and whether it was present.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Contains reports whether key is present without refreshing its recency.
	Contains(key string) bool

	// Len returns the number of live entries.
	Len() int

	// Close releases connections held by the backend.
	Close() error
}
