package utils

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	data      any
	expiresAt time.Time
}

// Cache 帖子视图的本地 LRU 缓存，条目按 TTL 过期
type Cache struct {
	items *lru.Cache[string, cacheEntry]
	ttl   time.Duration
	now   func() time.Time
}

func NewCache(size int, ttl time.Duration) (*Cache, error) {
	items, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &Cache{items: items, ttl: ttl, now: time.Now}, nil
}

// Set 使用默认 TTL
func (c *Cache) Set(key string, data any) {
	c.SetWithTTL(key, data, c.ttl)
}

func (c *Cache) SetWithTTL(key string, data any, ttl time.Duration) {
	c.items.Add(key, cacheEntry{data: data, expiresAt: c.now().Add(ttl)})
}

// Get 未命中或已过期返回 nil。先 Peek，过期条目不会被提升为最近使用。
func (c *Cache) Get(key string) any {
	e, ok := c.items.Peek(key)
	if !ok {
		return nil
	}
	if !c.now().Before(e.expiresAt) {
		c.items.Remove(key)
		return nil
	}
	c.items.Get(key)
	return e.data
}

func (c *Cache) Len() int {
	return c.items.Len()
}

func PostCacheKey(postID string) string {
	return "post:" + postID
}

// InvalidatePost 投票改变帖子分数后调用
func (c *Cache) InvalidatePost(postID string) {
	c.items.Remove(PostCacheKey(postID))
}
