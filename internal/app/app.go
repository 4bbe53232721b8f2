package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/render"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	serviceName = "storefront-cli"
	breakerName = "storefront"

	healthTimeout = 5 * time.Second
)

// App wires together all dependencies of the storefront client.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	terminal       *render.Terminal
	storefront     *client.Storefront
	health         *health.Registry
	shutdownTracer tracing.ShutdownFunc

	Cart     *service.CartStore
	Controls *service.CartControls
	Catalog  *service.Catalog
	Checkout *service.CheckoutInitiator

	chatOnce sync.Once
	chatbot  *service.Chatbot
}

// NewApp creates a new application instance, initializing all dependencies.
// User-facing output goes to out.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*App, error) {
	shutdownTracer, err := tracing.InitTracer(ctx, tracingConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rdb, err := database.NewRedisClient(connectCtx, redisConfig(cfg))
	if err != nil {
		_ = shutdownTracer(ctx)
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
		slog.String("namespace", cfg.Namespace),
	)

	terminal, err := render.NewTerminal(out, cfg.BaseURL)
	if err != nil {
		_ = rdb.Close()
		_ = shutdownTracer(ctx)
		return nil, err
	}

	storefront := newStorefront(cfg, logger)

	// Build the dependency graph.
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.Namespace, cfg.CartTTLDuration())
	cart := service.NewCartStore(ctx, cartRepo, terminal, terminal, logger)

	var payments service.PaymentRedirector
	if r := service.NewTemplateRedirector(cfg.PaymentRedirectURL, terminal); r != nil {
		payments = r
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		terminal:       terminal,
		storefront:     storefront,
		health:         newHealthRegistry(rdb, storefront),
		shutdownTracer: shutdownTracer,
		Cart:           cart,
		Controls:       service.NewCartControls(cart),
		Catalog:        service.NewCatalog(cart, storefront, terminal, logger),
		Checkout:       service.NewCheckoutInitiator(cart, storefront, terminal, payments, terminal, logger),
	}, nil
}

func tracingConfig(cfg *config.Config) tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.Environment = cfg.Environment
	tc.Enabled = cfg.OTELEnabled
	tc.OTLPEndpoint = cfg.OTELEndpoint
	tc.SampleRate = cfg.OTELSampleRate
	return tc
}

func redisConfig(cfg *config.Config) database.RedisConfig {
	return database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	}
}

// newStorefront builds the backend client: retrying HTTP client behind a
// circuit breaker whose open state becomes a SERVICE_UNAVAILABLE error.
func newStorefront(cfg *config.Config, logger *slog.Logger) *client.Storefront {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	httpCfg.MaxRetries = cfg.HTTPMaxRetries

	cbCfg := httpclient.DefaultCircuitBreakerConfig(breakerName)
	cbCfg.Timeout = cfg.CBTimeout
	cbCfg.MinRequests = cfg.CBMinRequests
	cbCfg.FailureRatio = cfg.CBFailureRatio

	cb := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger).
		WithFallback(client.CircuitOpenFallback)

	return client.NewStorefront(cb, cfg.BaseURL, logger)
}

// Terminal returns the terminal front end.
func (a *App) Terminal() *render.Terminal {
	return a.terminal
}

// Chatbot returns the chat client, restoring or creating its session on first
// use.
func (a *App) Chatbot(ctx context.Context) *service.Chatbot {
	a.chatOnce.Do(func() {
		sessions := redisrepo.NewSessionRepository(a.rdb, a.cfg.Namespace)
		a.chatbot = service.NewChatbot(ctx, a.storefront, sessions, a.terminal, a.cfg.ChatLanguage, a.logger)
	})
	return a.chatbot
}

// Health runs every dependency check.
func (a *App) Health(ctx context.Context) health.Report {
	return a.health.Run(ctx)
}

// Close flushes metrics and traces and releases connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if err := a.terminal.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush terminal: %w", err))
	}

	if a.cfg.PushgatewayURL != "" {
		if err := metrics.Push(ctx, a.cfg.PushgatewayURL, serviceName); err != nil {
			a.logger.Warn("metrics push failed", slog.String("error", err.Error()))
		}
	}

	if err := a.shutdownTracer(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
