package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/app"
)

func newChatCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message...>",
		Short: "Send a message to the shop assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				a.Chatbot(ctx).Send(ctx, strings.Join(args, " "))
				return nil
			})
		},
	}
}
