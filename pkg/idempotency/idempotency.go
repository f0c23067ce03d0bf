package idempotency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

const maxKeyLen = 128

func Key(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get(Header))
	if len(k) > maxKeyLen {
		return ""
	}
	return k
}

// Store remembers the result id produced for (scope, key).
type Store interface {
	Lookup(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, resultID string, ttl time.Duration) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(scope, key string) string {
	return "idem:" + scope + ":" + key
}

func (s *RedisStore) Lookup(ctx context.Context, scope, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, redisKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return v, true, nil
}

// Remember keeps the first result for a key; later writes are ignored.
func (s *RedisStore) Remember(ctx context.Context, scope, key, resultID string, ttl time.Duration) error {
	if err := s.rdb.SetNX(ctx, redisKey(scope, key), resultID, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]string)}
}

func (s *MemoryStore) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[redisKey(scope, key)]
	return v, ok, nil
}

func (s *MemoryStore) Remember(_ context.Context, scope, key, resultID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := redisKey(scope, key)
	if _, ok := s.m[k]; !ok {
		s.m[k] = resultID
	}
	return nil
}
