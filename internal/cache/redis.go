package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces the two Redis keys used by the cache.
const keyPrefix = "anihub:"

// opTimeout bounds every cache round trip; a slow cache must not slow page renders.
const opTimeout = 2 * time.Second

func init() {
	Register("redis", newRedisCache)
}

// redisCache shares the response cache between AniHub Web replicas.
//
// Two keys hold the whole cache:
//
//   - anihub:data, a hash of key -> value. Each field expires on its own through
//     HPEXPIRE, which needs Redis 7.4+ or Valkey 8+.
//   - anihub:lru, a sorted set of key -> last access time in microseconds.
//
// Reads and writes run as Lua scripts so the hash and the sorted set never disagree
// for longer than one script. Members whose field already expired are dropped the
// next time a write evicts.
type redisCache struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int
	onEvict EvictCallback
	logger  Logger
	dataKey string
	lruKey  string
}

// readScript returns the field and bumps its recency when present.
// KEYS: data, lru. ARGV: now (µs), key.
var readScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], ARGV[2])
if v then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
end
return v
`)

// writeScript stores the field with its TTL, records its recency and evicts the
// least recently read members beyond the size limit. Returns the evicted keys.
// KEYS: data, lru. ARGV: value, now (µs), key, limit, ttl (ms).
var writeScript = redis.NewScript(`
local key   = ARGV[3]
local limit = tonumber(ARGV[4])

redis.call('HSET', KEYS[1], key, ARGV[1])
redis.call('HPEXPIRE', KEYS[1], tonumber(ARGV[5]), 'FIELDS', 1, key)
redis.call('ZADD', KEYS[2], ARGV[2], key)

local evicted = {}
local count = redis.call('ZCARD', KEYS[2])
while count > limit do
    local popped = redis.call('ZPOPMIN', KEYS[2], 1)
    if #popped == 0 then break end
    redis.call('HDEL', KEYS[1], popped[1])
    table.insert(evicted, popped[1])
    count = count - 1
end
return evicted
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisCache{
		client:  client,
		ttl:     cfg.TTL,
		maxSize: cfg.Size,
		onEvict: cfg.OnEvict,
		logger:  cfg.Logger,
		dataKey: keyPrefix + "data",
		lruKey:  keyPrefix + "lru",
	}, nil
}

func (r *redisCache) scriptKeys() []string {
	return []string{r.dataKey, r.lruKey}
}

func (r *redisCache) report(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func nowMicros() string {
	return strconv.FormatInt(time.Now().UnixMicro(), 10)
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := readScript.Run(ctx, r.client, r.scriptKeys(), nowMicros(), key).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.report("redis cache read failed", err)
		}
		return nil, false
	}
	return []byte(val), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	evicted, err := writeScript.Run(ctx, r.client, r.scriptKeys(),
		value,
		nowMicros(),
		key,
		strconv.Itoa(r.maxSize),
		strconv.FormatInt(r.ttl.Milliseconds(), 10),
	).StringSlice()
	if err != nil {
		r.report("redis cache write failed", err)
		return
	}

	if r.onEvict == nil {
		return
	}
	for _, k := range evicted {
		r.onEvict(k, nil)
	}
}

func (r *redisCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ok, err := r.client.HExists(ctx, r.dataKey, key).Result()
	if err != nil {
		r.report("redis cache lookup failed", err)
		return false
	}
	return ok
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := r.client.HLen(ctx, r.dataKey).Result()
	if err != nil {
		r.report("redis cache size failed", err)
		return 0
	}
	return int(n)
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
