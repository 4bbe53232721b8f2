package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ProductID domain.ProductID
	Name      string
	Price     float64
	Currency  string
	Image     string
	// Quantity defaults to 1 when zero.
	Quantity int
}

// CartStore owns the cart line items. Every mutation persists the full
// sequence and re-renders; mutations are serialized by mu.
type CartStore struct {
	mu       sync.Mutex
	cart     domain.Cart
	repo     repository.CartRepository
	renderer Renderer
	notifier Notifier
	logger   *slog.Logger
}

// NewCartStore loads the persisted cart and renders it once. A cart that is
// missing or unreadable starts empty. A nil renderer or notifier is a no-op.
func NewCartStore(ctx context.Context, repo repository.CartRepository, renderer Renderer, notifier Notifier, logger *slog.Logger) *CartStore {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	s := &CartStore{
		repo:     repo,
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if items, err := s.load(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to load cart, starting empty",
			slog.String("error", err.Error()),
		)
	} else {
		s.cart.Items = items
	}
	s.render(ctx)

	return s
}

// load reads the persisted items. A cart that was never saved is not an error.
func (s *CartStore) load(ctx context.Context) ([]domain.LineItem, error) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

// AddItem merges the item into the cart, or appends it when the product is
// new, then notifies the user.
func (s *CartStore) AddItem(ctx context.Context, input AddItemInput) error {
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.cart.Add(domain.LineItem{
		ProductID: input.ProductID,
		Name:      input.Name,
		Price:     input.Price,
		Currency:  input.Currency,
		Image:     input.Image,
		Quantity:  quantity,
	})
	metrics.CartMutations.WithLabelValues("add").Inc()

	err := s.persist(ctx)
	s.render(ctx)
	s.notifier.Notify(ctx, fmt.Sprintf("%s added to cart", input.Name))

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("product_id", input.ProductID.String()),
		slog.Int("quantity", quantity),
		slog.Bool("merged", merged),
	)

	return err
}

// RemoveItem deletes the line for productID. An unknown id leaves the items
// unchanged.
func (s *CartStore) RemoveItem(ctx context.Context, productID domain.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(ctx, productID)
}

func (s *CartStore) removeLocked(ctx context.Context, productID domain.ProductID) error {
	if s.cart.Remove(productID) {
		s.logger.InfoContext(ctx, "item removed from cart",
			slog.String("product_id", productID.String()),
		)
	}
	metrics.CartMutations.WithLabelValues("remove").Inc()

	err := s.persist(ctx)
	s.render(ctx)
	return err
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes it. An unknown product is ignored without persisting or rendering.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID domain.ProductID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setQuantityLocked(ctx, productID, quantity)
}

func (s *CartStore) setQuantityLocked(ctx context.Context, productID domain.ProductID, quantity int) error {
	if quantity <= 0 {
		return s.removeLocked(ctx, productID)
	}
	if !s.cart.SetQuantity(productID, quantity) {
		return nil
	}
	metrics.CartMutations.WithLabelValues("update").Inc()

	err := s.persist(ctx)
	s.render(ctx)
	return err
}

// AdjustQuantity changes the quantity of a line by delta in one step, so
// concurrent adjustments never read a stale quantity.
func (s *CartStore) AdjustQuantity(ctx context.Context, productID domain.ProductID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.cart.FindItemIndex(productID)
	if i < 0 {
		return nil
	}
	return s.setQuantityLocked(ctx, productID, s.cart.Items[i].Quantity+delta)
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Items = nil
	metrics.CartMutations.WithLabelValues("clear").Inc()

	err := s.persist(ctx)
	s.render(ctx)
	return err
}

// Reload replaces the in-memory items with the persisted ones and reports
// whether they differed. The cart is re-rendered only on a change. On a read
// error the current items are kept.
func (s *CartStore) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return false, fmt.Errorf("reload cart: %w", err)
	}
	if slices.Equal(items, s.cart.Items) {
		return false, nil
	}
	s.cart.Items = items
	s.render(ctx)
	return true, nil
}

// TotalAmount returns the sum of price * quantity over all lines.
func (s *CartStore) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalAmount()
}

// TotalItems returns the number of units in the cart.
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// Items returns a copy of the current line items.
func (s *CartStore) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

// View returns the current render model.
func (s *CartStore) View() domain.CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.View()
}

// persist saves the full sequence. The in-memory state stays authoritative
// when the save fails.
func (s *CartStore) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.cart.Snapshot()); err != nil {
		metrics.CartPersistFailures.Inc()
		s.logger.ErrorContext(ctx, "failed to persist cart",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartStore) render(ctx context.Context) {
	view := s.cart.View()
	metrics.CartItems.Set(float64(view.TotalItems))
	s.renderer.RenderCart(ctx, view)
}
