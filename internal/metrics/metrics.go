package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// CartMutations counts cart mutations by operation (add, remove, update, clear).
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		},
		[]string{"operation"},
	)

	// CartPersistFailures counts failed writes of the cart to storage.
	CartPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cart_persist_failures_total",
			Help: "Total number of cart saves that failed",
		},
	)

	// CartItems tracks the number of units in the cart after the last mutation.
	CartItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cart_items",
			Help: "Number of units in the cart",
		},
	)

	// CheckoutOutcomes counts checkout attempts by outcome.
	CheckoutOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_outcomes_total",
			Help: "Total number of checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ChatRequests counts chat sends by result (ok, fallback, error).
	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_chat_requests_total",
			Help: "Total number of chat messages sent by result",
		},
		[]string{"result"},
	)

	// ChatDuration observes the round trip of a chat message.
	ChatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_chat_duration_seconds",
			Help:    "Duration of chat round trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ProductLookups counts product lookups by source (page, api) and result.
	ProductLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_product_lookups_total",
			Help: "Total number of product lookups by source and result",
		},
		[]string{"source", "result"},
	)

	// AnimationFrames counts rendered animation frames by variant.
	AnimationFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_animation_frames_total",
			Help: "Total number of animation frames drawn",
		},
		[]string{"variant"},
	)
)

// Push sends every metric in the default registry to a Pushgateway under job.
// A short-lived CLI process has no scrape endpoint, so this is how its
// counters leave the process.
func Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
