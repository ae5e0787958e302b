package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ProviderConfig carries everything a provider may need. Providers ignore fields that
// do not apply to them.
type ProviderConfig struct {
	Size    int           // entry limit
	TTL     time.Duration // lifetime of each entry
	OnEvict EvictCallback // optional, called for size-based evictions
	Logger  Logger        // optional, receives backend errors

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group labels the Prometheus series of this instance. An empty Group
	// returns the bare provider without instrumentation.
	Group string
}

// Provider builds a Cache from its configuration.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Provider)
)

// Register makes a provider available to New under name. Registering a nil provider or
// the same name twice panics, as both are programming errors caught at init.
func Register(name string, p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if p == nil {
		panic("cache: nil provider for " + name)
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("cache: provider %q registered twice", name))
	}
	registry[name] = p
}

// New builds a cache with the named provider. With a non-empty cfg.Group the result
// reports hits, misses, evictions and a scrape-time entry count under that label.
func New(name string, cfg ProviderConfig) (Cache, error) {
	registryMu.RLock()
	p, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	userEvict := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if userEvict != nil {
			userEvict(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders lists provider names in alphabetical order.
func RegisteredProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
