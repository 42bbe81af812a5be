package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/skillbridge/tutoring-backend/internal/models"
	"github.com/skillbridge/tutoring-backend/internal/utils"
)

const redisTimeout = 3 * time.Second

// RedisStore keeps opaque session tokens in Redis with a TTL
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore builds a Redis-backed session store
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "skillbridge"
	}
	return &RedisStore{
		client: client,
		prefix: prefix + ":session:",
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create writes a new session for the user and returns it with its token
func (s *RedisStore) Create(ctx context.Context, user *models.User, meta Meta) (*Session, error) {
	token, err := utils.NewSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	device := utils.ParseUserAgent(meta.UserAgent)
	sess := &Session{
		ID:         uuid.NewString(),
		Token:      token,
		UserID:     user.ID,
		Role:       user.Role,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		DeviceInfo: &device,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key(token), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Lookup resolves a token to its session
func (s *RedisStore) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		return nil, ErrNoSession
	}
	sess.Token = token
	return &sess, nil
}

// Revoke deletes the session. Unknown tokens are not an error.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}
