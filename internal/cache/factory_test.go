package cache

import (
	"testing"
	"time"
)

func TestNew_Memory(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 100, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New memory: %v", err)
	}
	defer c.Close()

	c.Set("home", []byte(`{"trending":{"media":[]}}`))
	val, ok := c.Get("home")
	if !ok || string(val) != `{"trending":{"media":[]}}` {
		t.Fatal("Memory cache should return the stored value")
	}
}

func TestNew_None(t *testing.T) {
	c, err := New("none", ProviderConfig{})
	if err != nil {
		t.Fatalf("New none: %v", err)
	}
	defer c.Close()

	c.Set("home", []byte("data"))
	if _, ok := c.Get("home"); ok {
		t.Fatal("Disabled cache should never hit")
	}
	if c.Len() != 0 || c.Contains("home") {
		t.Fatal("Disabled cache should stay empty")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New("memcached", ProviderConfig{}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestRegisteredProviders(t *testing.T) {
	names := RegisteredProviders()

	found := map[string]bool{}
	for i, n := range names {
		found[n] = true
		if i > 0 && names[i-1] > n {
			t.Errorf("Providers not sorted: %v", names)
		}
	}
	for _, want := range []string{"memory", "none", "redis"} {
		if !found[want] {
			t.Errorf("Expected %q provider to be registered, got %v", want, names)
		}
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected duplicate registration to panic")
		}
	}()
	Register("memory", newMemoryCache)
}

func TestNew_Redis_InvalidAddress(t *testing.T) {
	_, err := New("redis", ProviderConfig{
		Size:         100,
		TTL:          time.Hour,
		RedisAddress: "localhost:59999",
	})
	if err == nil {
		t.Fatal("Expected error when connecting to invalid Redis address")
	}
}
