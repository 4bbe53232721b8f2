package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
					a.Terminal().RenderCart(ctx, a.Cart.View())
					return nil
				})
			},
		},
		newCartAddCmd(c),
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
					return a.Cart.RemoveItem(ctx, domain.ProductID(args[0]))
				})
			},
		},
		&cobra.Command{
			Use:   "set <product-id> <quantity>",
			Short: "Set the quantity of a product; 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				quantity, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q is not a number", args[1])
				}
				return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
					return a.Cart.UpdateQuantity(ctx, domain.ProductID(args[0]), quantity)
				})
			},
		},
		newCartWatchCmd(c),
		newCartControlCmd(c, "inc", "Add one unit of a product", service.ActionIncrement),
		newCartControlCmd(c, "dec", "Remove one unit of a product", service.ActionDecrement),
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
					return a.Cart.Clear(ctx)
				})
			},
		},
	)
	return cmd
}

func newCartAddCmd(c *cli) *cobra.Command {
	var (
		name     string
		price    string
		image    string
		quantity int
	)

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: "Add a product to the cart. With --name and --price the product is added as given;\n" +
			"otherwise its details are looked up on the storefront.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ProductID(args[0])
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if name == "" || price == "" {
					return a.Catalog.AddToCart(ctx, id, nil)
				}

				product, err := domain.ProductLabel{Title: name, PriceLabel: price, ImageSrc: image}.Product()
				if err != nil {
					return err
				}
				return a.Cart.AddItem(ctx, service.AddItemInput{
					ProductID: id,
					Name:      product.Name,
					Price:     product.Price,
					Currency:  product.Currency,
					Image:     product.Image,
					Quantity:  quantity,
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().StringVar(&price, "price", "", `price label, e.g. "19.99 EUR"`)
	cmd.Flags().StringVar(&image, "image", "", "image URL or file name")
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "units to add")
	return cmd
}

func newCartControlCmd(c *cli, use, short string, action service.CartAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <product-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return a.Controls.Handle(ctx, action, domain.ProductID(args[0]))
			})
		},
	}
}

func newCartWatchCmd(c *cli) *cobra.Command {
	var (
		interval time.Duration
		checks   int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the cart and reprint it whenever another client changes it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				return c.watchCart(ctx, a, interval, checks)
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "how often storage is checked")
	cmd.Flags().IntVar(&checks, "checks", 0, "stop after this many checks; 0 watches until interrupted")
	return cmd
}

func (c *cli) watchCart(ctx context.Context, a *app.App, interval time.Duration, checks int) error {
	if err := a.Terminal().Flush(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; checks == 0 || n < checks; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		changed, err := a.Cart.Reload(ctx)
		if err != nil {
			c.log.WarnContext(ctx, "cart reload failed", slog.String("error", err.Error()))
			continue
		}
		if changed {
			if err := a.Terminal().Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}
