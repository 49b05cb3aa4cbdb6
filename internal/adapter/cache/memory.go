package cache

import (
	"context"
	"sync"

	"world-rates-service/pkg/logger"
)

// MemoryCache is an in-process document backend. Contents are lost on
// restart.
type MemoryCache struct {
	docs  map[string][]byte
	mutex sync.RWMutex
	log   *logger.Logger
}

func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		docs: make(map[string][]byte),
		log:  log,
	}
}

func (c *MemoryCache) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	doc, found := c.docs[key]
	if !found {
		c.log.Debug("Cache miss", "key", key)
		return nil, nil
	}
	c.log.Debug("Cache hit", "key", key)
	return append([]byte(nil), doc...), nil
}

func (c *MemoryCache) Write(ctx context.Context, key string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.docs[key] = append([]byte(nil), doc...)
	c.log.Debug("Cache set", "key", key, "bytes", len(doc))
	return nil
}
