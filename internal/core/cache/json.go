package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Typed stores values of one kind as JSON under "<namespace>:<id>".
type Typed[T any] struct {
	c         *Cache
	namespace string
	ttl       time.Duration
}

func NewTyped[T any](c *Cache, namespace string, ttl time.Duration) *Typed[T] {
	if c == nil {
		c = New("", "", 0)
	}
	return &Typed[T]{c: c, namespace: namespace, ttl: ttl}
}

func (t *Typed[T]) key(id string) string { return t.namespace + ":" + id }

// Get returns the cached value for id or calls load. A nil result is cached
// too and comes back as nil, so lookups of unknown ids stay cheap.
func (t *Typed[T]) Get(ctx context.Context, id string, load func(context.Context) (*T, error)) (*T, error) {
	b, err := t.c.GetOrLoad(ctx, t.key(id), t.ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	out := new(T)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", t.key(id), err)
	}
	return out, nil
}

// Forget drops id so the next Get reloads it.
func (t *Typed[T]) Forget(ctx context.Context, id string) error {
	return t.c.Delete(ctx, t.key(id))
}
