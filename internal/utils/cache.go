package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// ResponseCache 上游响应缓存，ttl <= 0 时不缓存
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewResponseCache 创建响应缓存，清理间隔为 ttl 的两倍
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		return &ResponseCache{}
	}
	return &ResponseCache{
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get 获取缓存值
func (c *ResponseCache) Get(key string) (interface{}, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	return c.store.Get(key)
}

// Set 设置缓存值
func (c *ResponseCache) Set(key string, value interface{}) {
	if c == nil || c.store == nil {
		return
	}
	c.store.Set(key, value, c.ttl)
}

// Flush 清空所有缓存
func (c *ResponseCache) Flush() {
	if c == nil || c.store == nil {
		return
	}
	c.store.Flush()
}

// ItemCount 当前缓存条数（可能包含尚未清理的过期项）
func (c *ResponseCache) ItemCount() int {
	if c == nil || c.store == nil {
		return 0
	}
	return c.store.ItemCount()
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// SearchCache 搜索结果缓存封装
type SearchCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewSearchCache 初始化，size 是最大缓存条数（如 1000），ttl 是数据有效期（如 1小时）
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	// lru.New 是线程安全的，size <= 0 才会报错
	c, _ := lru.New[string, CacheItem[T]](size)
	return &SearchCache[T]{
		storage: c,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set 写入（LRU 中 Add 会自动处理 Update）
func (c *SearchCache[T]) Set(key string, value T) {
	if c.ttl <= 0 {
		return
	}
	item := CacheItem[T]{
		Value:     value,
		ExpiredAt: c.now().Add(c.ttl),
	}
	c.storage.Add(key, item)
}

// Get 读取（带过期检查）
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	if c.now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	return item.Value, true
}

// Delete 删除
func (c *SearchCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *SearchCache[T]) Clear() {
	c.storage.Purge()
}

// Len 当前长度
func (c *SearchCache[T]) Len() int {
	return c.storage.Len()
}

// PurgeExpired 清理所有已过期条目，返回清理数量
func (c *SearchCache[T]) PurgeExpired() int {
	now := c.now()
	removed := 0
	for _, key := range c.storage.Keys() {
		// Peek 不更新 LRU 顺序
		if item, ok := c.storage.Peek(key); ok && now.After(item.ExpiredAt) {
			c.storage.Remove(key)
			removed++
		}
	}
	return removed
}
