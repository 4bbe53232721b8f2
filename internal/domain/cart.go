package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultCurrency labels the total of an empty cart.
const DefaultCurrency = "EUR"

// ProductID is the opaque key of a product within the cart. It decodes from a
// JSON string or number, since the storefront pages store numeric ids.
type ProductID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler. Canonical integer ids are written as
// JSON numbers, the form the storefront pages store and post; anything else,
// including zero-padded ids, stays a string.
func (id ProductID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id ProductID) String() string {
	return string(id)
}

// LineItem is one product-and-quantity entry in the cart.
type LineItem struct {
	ProductID ProductID `json:"productId"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Image     string    `json:"image"`
	Quantity  int       `json:"quantity"`
}

// Subtotal returns price * quantity.
func (i LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the ordered, deduplicated-by-product collection of line items.
// Insertion order is display order.
type Cart struct {
	Items []LineItem
}

// TotalAmount sums price * quantity over all items. Currencies are not
// converted; mixed-currency carts are summed as raw numbers.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the item with the given product id, or -1.
func (c *Cart) FindItemIndex(productID ProductID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges item into the cart: an existing line with the same product id has
// its quantity increased, otherwise item is appended. It reports whether an
// existing line was merged.
func (c *Cart) Add(item LineItem) bool {
	if i := c.FindItemIndex(item.ProductID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		return true
	}
	c.Items = append(c.Items, item)
	return false
}

// Remove deletes the line with the given product id and reports whether one existed.
func (c *Cart) Remove(productID ProductID) bool {
	i := c.FindItemIndex(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// SetQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line. It reports whether the product was in the cart.
func (c *Cart) SetQuantity(productID ProductID, quantity int) bool {
	i := c.FindItemIndex(productID)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

// DisplayCurrency is the currency of the first item, or DefaultCurrency.
func (c *Cart) DisplayCurrency() string {
	if len(c.Items) == 0 || c.Items[0].Currency == "" {
		return DefaultCurrency
	}
	return c.Items[0].Currency
}

// Snapshot returns a copy of the items that callers may keep.
func (c *Cart) Snapshot() []LineItem {
	out := make([]LineItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// View builds the render model for the current state.
func (c *Cart) View() CartView {
	return CartView{
		Items:       c.Snapshot(),
		TotalItems:  c.ItemCount(),
		TotalAmount: c.TotalAmount(),
		Currency:    c.DisplayCurrency(),
	}
}

// CartView is what a renderer receives after every cart mutation.
type CartView struct {
	Items       []LineItem
	TotalItems  int
	TotalAmount decimal.Decimal
	Currency    string
}

// Empty reports whether the cart has no lines.
func (v CartView) Empty() bool {
	return len(v.Items) == 0
}

// FormattedTotal renders the total with two decimals and the display currency.
func (v CartView) FormattedTotal() string {
	return v.TotalAmount.StringFixed(2) + " " + v.Currency
}
