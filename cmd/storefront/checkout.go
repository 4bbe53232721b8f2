package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/domain"
)

func newCheckoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Start checkout for the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				outcome := a.Checkout.Checkout(ctx)
				if outcome == domain.CheckoutFailed {
					return fmt.Errorf("checkout %s", outcome)
				}
				return nil
			})
		},
	}
}
