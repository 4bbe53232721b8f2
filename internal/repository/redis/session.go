package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// SessionRepository implements repository.SessionRepository using Redis.
type SessionRepository struct {
	client *redis.Client
	key    string
}

// NewSessionRepository creates a Redis-backed chat session store.
func NewSessionRepository(client *redis.Client, namespace string) *SessionRepository {
	return &SessionRepository{
		client: client,
		key:    SessionKey(namespace),
	}
}

// Token returns the stored session token.
func (r *SessionRepository) Token(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", apperrors.NotFound("chat session", r.key)
		}
		return "", fmt.Errorf("redis get session: %w", err)
	}
	return token, nil
}

// SaveToken stores token without expiry.
func (r *SessionRepository) SaveToken(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}
