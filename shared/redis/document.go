package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Document is a JSON value stored under a single Redis string key.
// Bind it to a specific type T; pass a ttl of 0 for keys that never expire.
type Document[T any] struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewDocument[T any](client *goredis.Client, ttl time.Duration) *Document[T] {
	return &Document[T]{client: client, ttl: ttl}
}

// Get loads and decodes key. A missing key reports (nil, false, nil).
func (d *Document[T]) Get(ctx context.Context, key string) (*T, bool, error) {
	data, err := d.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, true, nil
}

func (d *Document[T]) Set(ctx context.Context, key string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := d.client.Set(ctx, key, data, d.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (d *Document[T]) Delete(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
