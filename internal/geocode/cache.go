package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"globe-nav/internal/logger"
)

// Cache：按原始查询串保存成功结果
type Cache interface {
	Get(ctx context.Context, query string) (Result, bool)
	Set(ctx context.Context, query string, r Result)
}

// 文档注释：进程内缓存
// 背景：同一查询在会话内重复出现时零 I/O 返回；读写都做深拷贝，调用方修改结果不影响缓存。
// 约束：不设容量与 TTL，不做键归一化；仅保存成功结果，负结果不入缓存。
type MemCache struct {
	mu sync.RWMutex
	m  map[string]Result
}

func NewMemCache() *MemCache { return &MemCache{m: make(map[string]Result)} }

func (c *MemCache) Get(_ context.Context, query string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.m[query]
	return r.clone(), ok
}

func (c *MemCache) Set(_ context.Context, query string, r Result) {
	c.mu.Lock()
	c.m[query] = r.clone()
	c.mu.Unlock()
}

func (c *MemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// 文档注释：Redis 二级缓存
// 背景：多实例部署时共享外部地理编码结果，降低对 Nominatim 的请求频率；命中后回填进程内缓存。
// 约束：键为 "geocode:"+原始查询串，值为 JSON；读写失败只记录日志，按未命中处理。
type RedisCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedisCache(rc *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{rc: rc, ttl: ttl}
}

func redisKey(query string) string { return "geocode:" + query }

func (c *RedisCache) Get(ctx context.Context, query string) (Result, bool) {
	var r Result
	s, err := c.rc.Get(ctx, redisKey(query)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Debug("geocode_redis_get_error", "err", err)
		}
		return r, false
	}
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		logger.L().Debug("geocode_redis_decode_error", "err", err)
		return r, false
	}
	return r, true
}

func (c *RedisCache) Set(ctx context.Context, query string, r Result) {
	b, _ := json.Marshal(r)
	if err := c.rc.Set(ctx, redisKey(query), string(b), c.ttl).Err(); err != nil {
		logger.L().Debug("geocode_redis_set_error", "err", err)
	}
}
