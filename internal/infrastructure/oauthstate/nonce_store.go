package oauthstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// NonceStore remembers issued CSRF nonces until they are consumed once
type NonceStore interface {
	// Issue records a nonce for ttl
	Issue(ctx context.Context, nonce string, ttl time.Duration) error

	// Consume removes the nonce and reports whether it was outstanding
	Consume(ctx context.Context, nonce string) (bool, error)
}

// MemoryNonceStore keeps nonces in process memory. Suitable for a single instance.
type MemoryNonceStore struct {
	mu     sync.Mutex
	nonces map[string]time.Time
	clock  clockwork.Clock
}

// NewMemoryNonceStore creates an empty in-memory store
func NewMemoryNonceStore(clock clockwork.Clock) *MemoryNonceStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryNonceStore{
		nonces: make(map[string]time.Time),
		clock:  clock,
	}
}

func (s *MemoryNonceStore) Issue(_ context.Context, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for n, expiry := range s.nonces {
		if !now.Before(expiry) {
			delete(s.nonces, n)
		}
	}

	if _, exists := s.nonces[nonce]; exists {
		return fmt.Errorf("nonce already issued")
	}
	s.nonces[nonce] = now.Add(ttl)
	return nil
}

func (s *MemoryNonceStore) Consume(_ context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.nonces[nonce]
	if !ok {
		return false, nil
	}
	delete(s.nonces, nonce)
	return s.clock.Now().Before(expiry), nil
}

const redisKeyPrefix = "oauth:state:"

// RedisNonceStore shares nonces between instances through Redis
type RedisNonceStore struct {
	client *redis.Client
}

// RedisConfig holds connection settings for the Redis nonce store
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisNonceStore connects to Redis and verifies the connection
func NewRedisNonceStore(cfg RedisConfig) (*RedisNonceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisNonceStore{client: client}, nil
}

func (s *RedisNonceStore) Issue(ctx context.Context, nonce string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, redisKeyPrefix+nonce, "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	if !ok {
		return fmt.Errorf("nonce already issued")
	}
	return nil
}

func (s *RedisNonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	deleted, err := s.client.Del(ctx, redisKeyPrefix+nonce).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume nonce: %w", err)
	}
	return deleted == 1, nil
}

// Close closes the Redis connection
func (s *RedisNonceStore) Close() error {
	return s.client.Close()
}

var (
	_ NonceStore = (*MemoryNonceStore)(nil)
	_ NonceStore = (*RedisNonceStore)(nil)
)
