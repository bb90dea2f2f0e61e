package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/triage-ai/triage-guard/pkg/common"
	"github.com/triage-ai/triage-guard/pkg/domain/apikey"
)

// Cache fronts redis with a local in-process map. Guard verdicts are
// immutable for a given prompt, so local hits never need invalidation
// within their TTL. Local entries honor the same expiration as their
// redis counterpart so nothing outlives its distributed copy.
type Cache struct {
	client     *redis.Client
	localCache *common.TTLMap
	ttlMaps    sync.Map
	ttl        time.Duration
}

const (
	ApiKeyPattern = "apikey:%s"

	ApiKeyTTLName = "api_key"
	ResultTTLName = "result"
)

func NewCache(config common.CacheConfig) (*Cache, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	return NewCacheWithClient(redis.NewClient(options)), nil
}

// NewCacheWithClient wraps an existing redis client. Tests inject a mock
// client through it.
func NewCacheWithClient(client *redis.Client) *Cache {
	ttl := 5 * time.Minute
	return &Cache{
		client:     client,
		localCache: common.NewTTLMap(ttl),
		ttlMaps:    sync.Map{},
		ttl:        ttl,
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.localCache.Get(key); ok {
		str, err := safeStringCast(value)
		if err != nil {
			return "", fmt.Errorf("cache value error: %w", err)
		}
		return str, nil
	}
	return c.client.Get(ctx, key).Result()
}

func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return err
	}
	c.localCache.SetWithTTL(key, value, expiration)
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return err
	}
	c.localCache.Delete(key)
	return nil
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) CreateTTLMap(name string, ttl time.Duration) *common.TTLMap {
	ttlMap := common.NewTTLMap(ttl)
	c.ttlMaps.Store(name, ttlMap)
	return ttlMap
}

func (c *Cache) GetTTLMap(name string) *common.TTLMap {
	if value, ok := c.ttlMaps.Load(name); ok {
		ttlMap, err := safeTTLMapCast(value)
		if err != nil {
			return nil
		}
		return ttlMap
	}
	return nil
}

func (c *Cache) GetApiKey(ctx context.Context, key string) (*apikey.APIKey, error) {
	apikeyKey := fmt.Sprintf(ApiKeyPattern, key)
	res, err := c.Get(ctx, apikeyKey)
	if err != nil {
		return nil, err
	}
	apiKey := new(apikey.APIKey)
	if err := json.Unmarshal([]byte(res), apiKey); err != nil {
		return nil, err
	}
	return apiKey, nil
}

func (c *Cache) SaveApiKey(ctx context.Context, key *apikey.APIKey) error {
	data, err := json.Marshal(key)
	if err != nil {
		return err
	}
	cacheKey := fmt.Sprintf(ApiKeyPattern, key.Key)
	return c.Set(ctx, cacheKey, string(data), common.ApiKeyCacheTTL)
}

func safeStringCast(value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid type assertion to string")
	}
	return str, nil
}

func safeTTLMapCast(value interface{}) (*common.TTLMap, error) {
	ttlMap, ok := value.(*common.TTLMap)
	if !ok {
		return nil, fmt.Errorf("invalid type assertion to TTLMap")
	}
	return ttlMap, nil
}
