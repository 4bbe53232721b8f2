package service

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// Renderer presents the cart after every mutation.
type Renderer interface {
	RenderCart(ctx context.Context, view domain.CartView)
}

// Notifier shows transient, user-visible messages.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Navigator moves the user to another page.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// PaymentRedirector hands a checkout session to the payment provider.
type PaymentRedirector interface {
	Redirect(ctx context.Context, sessionID string) error
}

// Transcript displays the chat conversation.
type Transcript interface {
	Append(ctx context.Context, msg domain.ChatMessage)
	ShowTyping(ctx context.Context)
	HideTyping(ctx context.Context)
}

// CheckoutAPI creates checkout sessions on the storefront backend.
type CheckoutAPI interface {
	CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error)
}

// ChatAPI sends chat messages to the storefront backend.
type ChatAPI interface {
	SendChatMessage(ctx context.Context, sessionID string, req domain.ChatRequest) (domain.ChatReply, error)
}

// ProductLookup fetches catalog entries by product id.
type ProductLookup interface {
	LookupProducts(ctx context.Context, productID domain.ProductID) ([]domain.Product, error)
}

type nopRenderer struct{}

func (nopRenderer) RenderCart(context.Context, domain.CartView) {}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) {}

type nopTranscript struct{}

func (nopTranscript) Append(context.Context, domain.ChatMessage) {}
func (nopTranscript) ShowTyping(context.Context)                 {}
func (nopTranscript) HideTyping(context.Context)                 {}
