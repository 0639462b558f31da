package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quotestudio/internal/domain"
)

// SessionStore tracks live sessions so tokens can be revoked on sign-out.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// UserID returns the owner of a live session or ErrUnauthorized.
	UserID(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

const sessionKeyPrefix = "quotestudio:session:"

// RedisSessionStore keeps sessions as expiring Redis keys.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisSessionStore) UserID(ctx context.Context, sessionID string) (string, error) {
	v, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("session revoked or expired: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return v, nil
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

type memorySession struct {
	userID  string
	expires time.Time
}

// MemorySessionStore keeps sessions in process. Used when no Redis is
// configured and in tests; sessions do not survive restarts.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession), now: time.Now}
}

func (s *MemorySessionStore) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, sess := range s.sessions {
		if !now.Before(sess.expires) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sessionID] = memorySession{userID: userID, expires: now.Add(ttl)}
	return nil
}

func (s *MemorySessionStore) UserID(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok || !s.now().Before(sess.expires) {
		delete(s.sessions, sessionID)
		return "", fmt.Errorf("session revoked or expired: %w", domain.ErrUnauthorized)
	}
	return sess.userID, nil
}

func (s *MemorySessionStore) Ping(ctx context.Context) error { return nil }

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

var (
	_ SessionStore = (*RedisSessionStore)(nil)
	_ SessionStore = (*MemorySessionStore)(nil)
)
