package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"stockwatch/model"
	"stockwatch/utils/log"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache : JSON value store keyed by string
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
}

// RedisCache : Cache over go-redis with a key prefix and a fixed TTL
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

func NewRedisCache(opts RedisOptions) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), opts.Prefix, opts.TTL)
}

func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// Ping : reachability check used at startup
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// CachedSupplier : read-through cache in front of another Supplier.
// Cache failures are logged and fall back to the wrapped supplier.
type CachedSupplier struct {
	next  Supplier
	cache Cache
}

func NewCachedSupplier(next Supplier, cache Cache) *CachedSupplier {
	return &CachedSupplier{next: next, cache: cache}
}

func seriesKey(code string) string     { return "series:" + code }
func instrumentKey(code string) string { return "instrument:" + code }

func (s *CachedSupplier) Series(ctx context.Context, code string) (Quote, error) {
	code = model.NormalizeCode(code)
	var quote Quote
	err := s.cache.Get(ctx, seriesKey(code), &quote)
	if err == nil {
		return quote, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Warnf("feed: cache read %s: %v", code, err)
	}
	return s.Refresh(ctx, code)
}

// Refresh : fetches from the wrapped supplier and overwrites the cached series
func (s *CachedSupplier) Refresh(ctx context.Context, code string) (Quote, error) {
	code = model.NormalizeCode(code)
	quote, err := s.next.Series(ctx, code)
	if err != nil {
		return Quote{}, err
	}
	if err := s.cache.Set(ctx, seriesKey(code), quote); err != nil {
		log.Warnf("feed: cache write %s: %v", code, err)
	}
	return quote, nil
}

func (s *CachedSupplier) Instrument(ctx context.Context, code string) (model.Instrument, error) {
	code = model.NormalizeCode(code)
	var instrument model.Instrument
	err := s.cache.Get(ctx, instrumentKey(code), &instrument)
	if err == nil {
		return instrument, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Warnf("feed: cache read %s: %v", code, err)
	}

	instrument, err = s.next.Instrument(ctx, code)
	if err != nil {
		return model.Instrument{}, err
	}
	if err := s.cache.Set(ctx, instrumentKey(code), instrument); err != nil {
		log.Warnf("feed: cache write %s: %v", code, err)
	}
	return instrument, nil
}
