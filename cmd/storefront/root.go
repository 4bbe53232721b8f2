package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/pkg/logger"
)

// cli carries state shared by all commands.
type cli struct {
	envPrefix string
	cfg       *config.Config
	log       *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Terminal client for the storefront: cart, checkout, chat",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadWithPrefix(c.envPrefix)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = logger.New("storefront-cli", cfg.LogLevel)
			c.log.Debug("configuration loaded",
				slog.String("environment", cfg.Environment),
				slog.String("base_url", cfg.BaseURL),
				slog.String("namespace", cfg.Namespace),
			)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.envPrefix, "env-prefix", "",
		"prefix for every environment variable, e.g. SHOP2_ for a second profile")

	root.AddCommand(
		newCartCmd(c),
		newCheckoutCmd(c),
		newChatCmd(c),
		newRainCmd(),
		newDoctorCmd(c),
	)
	return root
}

// withApp builds the application, runs fn, and closes the application. Every
// invocation gets its own correlation id, logged and sent to the storefront.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	ctx := logger.WithCorrelationID(cmd.Context(), uuid.NewString())

	a, err := app.NewApp(ctx, c.cfg, c.log, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("initialize storefront: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if closeErr := a.Close(closeCtx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(ctx, a)
}
