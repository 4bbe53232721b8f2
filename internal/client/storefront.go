package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

// Storefront backend paths.
const (
	CheckoutPath = "/checkout"
	ChatbotPath  = "/api/chatbot"
	ProductsPath = "/api/products"

	// SessionHeader carries the chat session token.
	SessionHeader = "X-Session-ID"

	maxErrorBody = 1 << 20
)

// CircuitOpenFallback is used as the breaker fallback for storefront calls.
// It turns the raw ErrCircuitOpen into a structured error.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("storefront is temporarily unavailable, please retry shortly")
}

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Storefront talks JSON to the storefront backend.
type Storefront struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewStorefront creates a client for the backend at baseURL.
func NewStorefront(doer HTTPDoer, baseURL string, logger *slog.Logger) *Storefront {
	return &Storefront{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		tracer:  tracing.Tracer("storefront/client"),
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Storefront) BaseURL() string {
	return c.baseURL
}

// CreateCheckoutSession posts the cart snapshot to the checkout endpoint. The
// backend reports failures as {"error": "..."} with a non-2xx status; such a
// body is decoded into the result rather than returned as an error so the
// caller can show the message. The request is never retried: a repeated POST
// could open a second payment session.
func (c *Storefront) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error) {
	ctx, span := c.tracer.Start(ctx, "storefront.checkout",
		trace.WithAttributes(attribute.Int("checkout.items", len(req.Items))),
	)
	defer span.End()

	var result domain.CheckoutResult

	body, err := json.Marshal(req)
	if err != nil {
		return result, fmt.Errorf("marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CheckoutPath, bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("create checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpclient.WithoutRetry(ctx), httpReq)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && decodeErrorResult(statusErr.Body, &result) {
			span.SetAttributes(attribute.Int("http.status_code", statusErr.StatusCode))
			return result, nil
		}
		recordError(span, err)
		return result, fmt.Errorf("call checkout: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr == nil && decodeErrorResult(raw, &result) {
			return result, nil
		}
		err := httpclient.StatusToError(resp.StatusCode, raw, "checkout")
		recordError(span, err)
		return result, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		err = apperrors.BadResponse("decode checkout response", err)
		recordError(span, err)
		return result, err
	}

	c.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", result.SessionID),
		slog.Bool("demo_mode", result.DemoMode),
	)

	return result, nil
}

// decodeErrorResult decodes a non-2xx checkout body. It reports whether the
// body was a JSON object carrying at least an error or a session id.
func decodeErrorResult(raw []byte, result *domain.CheckoutResult) bool {
	var decoded domain.CheckoutResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return false
	}
	if decoded.Error == "" && decoded.SessionID == "" {
		return false
	}
	*result = decoded
	return true
}

// SendChatMessage posts one chat message with the session token header.
func (c *Storefront) SendChatMessage(ctx context.Context, sessionID string, req domain.ChatRequest) (domain.ChatReply, error) {
	ctx, span := c.tracer.Start(ctx, "storefront.chat")
	defer span.End()

	var reply domain.ChatReply

	if err := validator.Validate(req); err != nil {
		return reply, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return reply, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatbotPath, bytes.NewReader(body))
	if err != nil {
		return reply, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(SessionHeader, sessionID)

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && json.Unmarshal(statusErr.Body, &reply) == nil {
			span.SetAttributes(attribute.Int("http.status_code", statusErr.StatusCode))
			return reply, nil
		}
		recordError(span, err)
		return reply, fmt.Errorf("call chatbot: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	// A JSON error body is a reply without a response; the caller decides
	// what to show.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr == nil && json.Unmarshal(raw, &reply) == nil {
			return reply, nil
		}
		err := httpclient.StatusToError(resp.StatusCode, raw, "chatbot")
		recordError(span, err)
		return reply, err
	}

	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		err = apperrors.BadResponse("decode chat response", err)
		recordError(span, err)
		return reply, err
	}

	return reply, nil
}

// LookupProducts fetches catalog entries for productID. An unknown product
// yields an empty slice.
func (c *Storefront) LookupProducts(ctx context.Context, productID domain.ProductID) ([]domain.Product, error) {
	ctx, span := c.tracer.Start(ctx, "storefront.products",
		trace.WithAttributes(attribute.String("product.id", productID.String())),
	)
	defer span.End()

	u := c.baseURL + ProductsPath + "?" + url.Values{"product_id": {productID.String()}}.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create product request: %w", err)
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("call products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := httpclient.ParseResponseError(resp, "products")
		recordError(span, err)
		return nil, err
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		err = apperrors.BadResponse("decode product response", err)
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.results", len(products)))
	return products, nil
}

// Ping issues a GET against the base URL. Any HTTP response counts as
// reachable.
func (c *Storefront) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return nil
		}
		return fmt.Errorf("ping storefront: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
