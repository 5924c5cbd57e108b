package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when the key is not cached
var ErrMiss = errors.New("cache miss")

// ItemCache holds item detail lookups. Callers treat every error as a miss:
// the database stays the source of truth.
type ItemCache interface {
	Get(ctx context.Context, id int32) (*domain.Item, error)
	Set(ctx context.Context, item *domain.Item) error
	Invalidate(ctx context.Context, id int32) error
}

// TokenDenylist remembers revoked refresh tokens until they would have expired
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NewClient connects to Redis. An empty address returns nil, meaning callers
// should fall back to the in-process implementations.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func itemKey(id int32) string {
	return fmt.Sprintf("item:%d", id)
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

type redisItemCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisItemCache(rdb *redis.Client, ttl time.Duration) ItemCache {
	return &redisItemCache{rdb: rdb, ttl: ttl}
}

func (c *redisItemCache) Get(ctx context.Context, id int32) (*domain.Item, error) {
	data, err := c.rdb.Get(ctx, itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		logger.ExternalServiceResult("redis", "GET", err, "key", itemKey(id))
		return nil, err
	}

	var item domain.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *redisItemCache) Set(ctx context.Context, item *domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	err = c.rdb.Set(ctx, itemKey(item.ID), data, c.ttl).Err()
	if err != nil {
		logger.ExternalServiceResult("redis", "SET", err, "key", itemKey(item.ID))
	}
	return err
}

func (c *redisItemCache) Invalidate(ctx context.Context, id int32) error {
	err := c.rdb.Del(ctx, itemKey(id)).Err()
	if err != nil {
		logger.ExternalServiceResult("redis", "DEL", err, "key", itemKey(id))
	}
	return err
}

type redisDenylist struct {
	rdb *redis.Client
}

func NewRedisDenylist(rdb *redis.Client) TokenDenylist {
	return &redisDenylist{rdb: rdb}
}

func (d *redisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func (d *redisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is the in-process fallback for a single instance deployment. It
// implements both ItemCache and TokenDenylist.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (m *Memory) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *Memory) put(key string, value []byte, until time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expires: until}
}

func (m *Memory) Get(ctx context.Context, id int32) (*domain.Item, error) {
	data, ok := m.get(itemKey(id))
	if !ok {
		return nil, ErrMiss
	}
	var item domain.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *Memory) Set(ctx context.Context, item *domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	m.put(itemKey(item.ID), data, m.now().Add(m.ttl))
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, itemKey(id))
	return nil
}

func (m *Memory) Revoke(ctx context.Context, jti string, until time.Time) error {
	m.put(revokedKey(jti), []byte{1}, until)
	return nil
}

func (m *Memory) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok := m.get(revokedKey(jti))
	return ok, nil
}
