package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Load returns the persisted line items. A cart that was never saved
	// yields an ErrNotFound error.
	Load(ctx context.Context) ([]domain.LineItem, error)

	// Save replaces the persisted sequence with items.
	Save(ctx context.Context, items []domain.LineItem) error
}

// SessionRepository persists the chat session token.
type SessionRepository interface {
	// Token returns the stored token, or an ErrNotFound error when none exists.
	Token(ctx context.Context) (string, error)

	// SaveToken overwrites the stored token.
	SaveToken(ctx context.Context, token string) error
}
