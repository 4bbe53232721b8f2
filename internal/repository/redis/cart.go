package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const (
	cartKeySuffix    = ":cart"
	sessionKeySuffix = ":chatbot_session_id"
)

// CartKey returns the storage key of the cart within namespace.
func CartKey(namespace string) string {
	return namespace + cartKeySuffix
}

// SessionKey returns the storage key of the chat session token within namespace.
func SessionKey(namespace string) string {
	return namespace + sessionKeySuffix
}

// CartRepository implements repository.CartRepository using Redis. The whole
// sequence is stored as one JSON array under a fixed key.
type CartRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewCartRepository creates a new Redis-backed cart repository. A zero ttl
// keeps the cart until it is overwritten.
func NewCartRepository(client *redis.Client, namespace string, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		key:    CartKey(namespace),
		ttl:    ttl,
	}
}

// Load retrieves the persisted line items.
func (r *CartRepository) Load(ctx context.Context) ([]domain.LineItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("cart", r.key)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return items, nil
}

// Save persists the full sequence with the configured TTL.
func (r *CartRepository) Save(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}
