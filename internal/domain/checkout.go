package domain

// CheckoutItem is one line of the checkout request. Prices are omitted; the
// backend re-derives them.
type CheckoutItem struct {
	ProductID ProductID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CheckoutRequest is the body POSTed to the checkout endpoint.
type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

// NewCheckoutRequest maps cart lines to {product_id, quantity} pairs.
func NewCheckoutRequest(items []LineItem) CheckoutRequest {
	req := CheckoutRequest{Items: make([]CheckoutItem, len(items))}
	for i, item := range items {
		req.Items[i] = CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return req
}

// CheckoutResult is the checkout endpoint's response. Exactly one of the
// shapes {session_id, demo_mode, redirect_url}, {session_id} or {error} is
// expected.
type CheckoutResult struct {
	SessionID   string `json:"session_id"`
	DemoMode    bool   `json:"demo_mode"`
	RedirectURL string `json:"redirect_url"`
	Error       string `json:"error"`
}

// CheckoutOutcome is the branch a checkout attempt ended in.
type CheckoutOutcome string

const (
	// CheckoutEmptyCart: nothing to check out, no request was sent.
	CheckoutEmptyCart CheckoutOutcome = "empty"
	// CheckoutDemo: demo session, navigated straight to the redirect URL.
	CheckoutDemo CheckoutOutcome = "demo"
	// CheckoutPayment: the session was handed to the payment redirector.
	CheckoutPayment CheckoutOutcome = "payment"
	// CheckoutFallback: no payment redirector, navigated to the success page.
	CheckoutFallback CheckoutOutcome = "fallback"
	// CheckoutFailed: the backend refused or the request failed.
	CheckoutFailed CheckoutOutcome = "failed"
)
