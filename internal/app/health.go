package app

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/pkg/health"
)

func newHealthRegistry(rdb *redis.Client, storefront *client.Storefront) *health.Registry {
	reg := health.NewRegistry(healthTimeout)
	reg.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	reg.RegisterNonCritical("storefront", storefront.Ping)
	return reg
}

// Diagnose checks every dependency without requiring any of them to be up,
// unlike NewApp which fails when storage is unreachable.
func Diagnose(ctx context.Context, cfg *config.Config, logger *slog.Logger) health.Report {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	return newHealthRegistry(rdb, newStorefront(cfg, logger)).Run(ctx)
}
