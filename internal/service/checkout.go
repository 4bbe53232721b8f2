package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// User-visible checkout messages.
const (
	MsgCartEmpty          = "Your cart is empty"
	MsgPaymentUnavailable = "Payment provider is not configured, redirecting to the demo page"
	MsgSessionFailed      = "Could not create the payment session"
	MsgUnknownError       = "unknown error"
	MsgCheckoutFailed     = "Checkout failed, please try again"
)

// SuccessPath is the order confirmation page used when no payment provider is
// available.
const SuccessPath = "/checkout/success"

// FallbackSuccessURL returns the confirmation URL for sessionID.
func FallbackSuccessURL(sessionID string) string {
	return SuccessPath + "?" + url.Values{"session_id": {sessionID}}.Encode()
}

// CartReader gives read access to the cart contents.
type CartReader interface {
	Items() []domain.LineItem
}

// CheckoutInitiator sends the cart to the checkout endpoint and acts on the
// response. It never modifies the cart.
type CheckoutInitiator struct {
	cart      CartReader
	api       CheckoutAPI
	navigator Navigator
	payments  PaymentRedirector
	notifier  Notifier
	logger    *slog.Logger
}

// NewCheckoutInitiator creates a checkout initiator. payments may be nil when
// no payment provider is configured.
func NewCheckoutInitiator(cart CartReader, api CheckoutAPI, navigator Navigator, payments PaymentRedirector, notifier Notifier, logger *slog.Logger) *CheckoutInitiator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CheckoutInitiator{
		cart:      cart,
		api:       api,
		navigator: navigator,
		payments:  payments,
		notifier:  notifier,
		logger:    logger,
	}
}

// Checkout runs one checkout attempt and reports which branch was taken.
// Failures become notices; none are returned.
func (c *CheckoutInitiator) Checkout(ctx context.Context) domain.CheckoutOutcome {
	outcome := c.checkout(ctx)
	metrics.CheckoutOutcomes.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (c *CheckoutInitiator) checkout(ctx context.Context) domain.CheckoutOutcome {
	items := c.cart.Items()
	if len(items) == 0 {
		c.notifier.Notify(ctx, MsgCartEmpty)
		return domain.CheckoutEmptyCart
	}

	result, err := c.api.CreateCheckoutSession(ctx, domain.NewCheckoutRequest(items))
	if err != nil {
		return c.fail(ctx, "checkout request failed", err)
	}

	switch {
	case result.SessionID != "" && result.DemoMode:
		if err := c.navigate(ctx, result.RedirectURL); err != nil {
			return c.fail(ctx, "demo redirect failed", err)
		}
		c.logger.InfoContext(ctx, "checkout completed in demo mode",
			slog.String("session_id", result.SessionID),
		)
		return domain.CheckoutDemo

	case result.SessionID != "":
		if c.payments == nil {
			c.notifier.Notify(ctx, MsgPaymentUnavailable)
			if err := c.navigate(ctx, FallbackSuccessURL(result.SessionID)); err != nil {
				return c.fail(ctx, "fallback redirect failed", err)
			}
			return domain.CheckoutFallback
		}
		if err := c.payments.Redirect(ctx, result.SessionID); err != nil {
			return c.fail(ctx, "payment redirect failed", err)
		}
		c.logger.InfoContext(ctx, "redirected to payment provider",
			slog.String("session_id", result.SessionID),
		)
		return domain.CheckoutPayment

	default:
		reason := strings.TrimSpace(result.Error)
		if reason == "" {
			reason = MsgUnknownError
		}
		c.logger.WarnContext(ctx, "checkout session not created",
			slog.String("reason", reason),
		)
		c.notifier.Notify(ctx, MsgSessionFailed+": "+reason)
		return domain.CheckoutFailed
	}
}

func (c *CheckoutInitiator) navigate(ctx context.Context, target string) error {
	if c.navigator == nil {
		return nil
	}
	return c.navigator.Navigate(ctx, target)
}

func (c *CheckoutInitiator) fail(ctx context.Context, msg string, err error) domain.CheckoutOutcome {
	c.logger.ErrorContext(ctx, msg,
		slog.String("code", apperrors.Code(err)),
		slog.String("error", err.Error()),
	)
	c.notifier.Notify(ctx, MsgCheckoutFailed)
	return domain.CheckoutFailed
}

// TemplateRedirector sends the user to a payment page built from a URL
// template containing a {session_id} placeholder.
type TemplateRedirector struct {
	template  string
	navigator Navigator
}

// NewTemplateRedirector returns nil when template is empty, meaning no payment
// provider is available.
func NewTemplateRedirector(template string, navigator Navigator) *TemplateRedirector {
	if template == "" {
		return nil
	}
	return &TemplateRedirector{template: template, navigator: navigator}
}

// Redirect implements PaymentRedirector.
func (r *TemplateRedirector) Redirect(ctx context.Context, sessionID string) error {
	target := strings.ReplaceAll(r.template, "{session_id}", url.QueryEscape(sessionID))
	return r.navigator.Navigate(ctx, target)
}
