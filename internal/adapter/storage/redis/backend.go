// Package redis provides a Redis-backed settings document backend, for
// deployments where several instances share one document.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

type Backend struct {
	client *goredis.Client
	prefix string
}

func New(addr, password string, db int, prefix string) *Backend {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Backend{client: client, prefix: prefix}
}

func NewWithClient(client *goredis.Client, prefix string) *Backend {
	return &Backend{client: client, prefix: prefix}
}

func (b *Backend) key(key string) string {
	return b.prefix + key
}

func (b *Backend) Ping(ctx context.Context) error {
	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (b *Backend) Read(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Write stores the document without expiry; staleness is tracked inside
// the document itself.
func (b *Backend) Write(ctx context.Context, key string, doc []byte) error {
	if err := b.client.Set(ctx, b.key(key), doc, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}
