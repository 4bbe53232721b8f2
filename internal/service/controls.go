package service

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartAction is a per-line control bound by a renderer.
type CartAction string

const (
	ActionIncrement CartAction = "increment"
	ActionDecrement CartAction = "decrement"
	ActionRemove    CartAction = "remove"
)

// CartControls dispatches per-line control events to the cart store.
type CartControls struct {
	store *CartStore
}

// NewCartControls creates controls bound to store.
func NewCartControls(store *CartStore) *CartControls {
	return &CartControls{store: store}
}

// Handle applies action to the line for productID. Decrementing a line with
// quantity 1 removes it.
func (c *CartControls) Handle(ctx context.Context, action CartAction, productID domain.ProductID) error {
	switch action {
	case ActionIncrement:
		return c.store.AdjustQuantity(ctx, productID, 1)
	case ActionDecrement:
		return c.store.AdjustQuantity(ctx, productID, -1)
	case ActionRemove:
		return c.store.RemoveItem(ctx, productID)
	default:
		return apperrors.InvalidInput("unknown cart action " + string(action))
	}
}
