package service

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// MsgProductUnavailable is shown when a product could not be fetched.
const MsgProductUnavailable = "Could not load product details, please try again"

// ProductSource exposes product data embedded in the current page.
type ProductSource interface {
	ProductLabel(productID domain.ProductID) (domain.ProductLabel, bool)
}

// StaticProducts is a ProductSource backed by a map.
type StaticProducts map[domain.ProductID]domain.ProductLabel

// ProductLabel implements ProductSource.
func (p StaticProducts) ProductLabel(productID domain.ProductID) (domain.ProductLabel, bool) {
	label, ok := p[productID]
	return label, ok
}

// Catalog adds products to the cart by id, resolving their details from the
// page first and from the backend otherwise.
type Catalog struct {
	store    *CartStore
	lookup   ProductLookup
	notifier Notifier
	logger   *slog.Logger
}

// NewCatalog creates a new catalog.
func NewCatalog(store *CartStore, lookup ProductLookup, notifier Notifier, logger *slog.Logger) *Catalog {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Catalog{
		store:    store,
		lookup:   lookup,
		notifier: notifier,
		logger:   logger,
	}
}

// AddToCart adds one unit of productID. Page data from source wins; when it is
// absent or its price label cannot be parsed, the product is looked up. A
// lookup returning no products adds nothing. Lookup failures are logged and
// shown as a notice only; the returned error reports cart persistence.
func (c *Catalog) AddToCart(ctx context.Context, productID domain.ProductID, source ProductSource) error {
	if source != nil {
		if label, ok := source.ProductLabel(productID); ok {
			product, err := label.Product()
			if err == nil {
				metrics.ProductLookups.WithLabelValues("page", "ok").Inc()
				return c.add(ctx, productID, product)
			}
			metrics.ProductLookups.WithLabelValues("page", "error").Inc()
			c.logger.WarnContext(ctx, "unparsable page product data, falling back to lookup",
				slog.String("product_id", productID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	products, err := c.lookup.LookupProducts(ctx, productID)
	if err != nil {
		metrics.ProductLookups.WithLabelValues("api", "error").Inc()
		c.logger.ErrorContext(ctx, "product lookup failed",
			slog.String("product_id", productID.String()),
			slog.String("code", apperrors.Code(err)),
			slog.String("error", err.Error()),
		)
		c.notifier.Notify(ctx, MsgProductUnavailable)
		return nil
	}

	if len(products) == 0 {
		metrics.ProductLookups.WithLabelValues("api", "empty").Inc()
		c.logger.InfoContext(ctx, "product lookup returned nothing",
			slog.String("product_id", productID.String()),
		)
		return nil
	}

	metrics.ProductLookups.WithLabelValues("api", "ok").Inc()
	return c.add(ctx, productID, products[0])
}

func (c *Catalog) add(ctx context.Context, productID domain.ProductID, p domain.Product) error {
	return c.store.AddItem(ctx, AddItemInput{
		ProductID: productID,
		Name:      p.Name,
		Price:     p.Price,
		Currency:  p.Currency,
		Image:     p.Image,
		Quantity:  1,
	})
}
