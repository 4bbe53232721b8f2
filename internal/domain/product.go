package domain

import (
	"path"
	"strconv"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Product is a catalog entry as returned by the product lookup endpoint.
type Product struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Image    string  `json:"image"`
}

// ProductLabel is product data embedded in a page: the visible title, the
// price label as displayed ("19.99 EUR") and the image source.
type ProductLabel struct {
	Title      string
	PriceLabel string
	ImageSrc   string
}

// ParsePriceLabel splits a displayed price such as "19.99 EUR" into amount and
// currency. A label without a currency yields an empty currency.
func ParsePriceLabel(label string) (float64, string, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, "", apperrors.InvalidInput("empty price label")
	}

	price, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, "", apperrors.InvalidInput("price label " + strconv.Quote(label) + " has no leading number")
	}

	var currency string
	if len(fields) > 1 {
		currency = fields[1]
	}
	return price, currency, nil
}

// ImageRef reduces an image source to the stored reference (its last path
// segment). An empty source stays empty.
func ImageRef(src string) string {
	if src == "" {
		return ""
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	ref := path.Base(src)
	if ref == "." || ref == "/" {
		return ""
	}
	return ref
}

// Product converts the label into a Product.
func (l ProductLabel) Product() (Product, error) {
	price, currency, err := ParsePriceLabel(l.PriceLabel)
	if err != nil {
		return Product{}, err
	}
	return Product{
		Name:     strings.TrimSpace(l.Title),
		Price:    price,
		Currency: currency,
		Image:    ImageRef(l.ImageSrc),
	}, nil
}
