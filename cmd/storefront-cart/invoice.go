package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

func newInvoiceCmd(g *globals) *cobra.Command {
	var (
		userID   string
		customer order.Customer
	)
	cmd := &cobra.Command{
		Use:   "invoice ORDER_ID",
		Short: "Print the plain-text invoice of a placed order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			be, err := openBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer be.close()

			uid := strings.TrimSpace(userID)
			if uid == "" {
				return cart.ErrNotAuthenticated
			}

			orders, err := be.ledger.List(ctx, uid)
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}
			o, ok := order.Find(orders, args[0])
			if !ok {
				return fmt.Errorf("order %s not found for user %s", args[0], uid)
			}
			return order.WriteInvoice(cmd.OutOrStdout(), o, customer)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "id of the user who placed the order")
	cmd.Flags().StringVar(&customer.Name, "name", "", "customer name printed on the invoice")
	cmd.Flags().StringVar(&customer.Email, "email", "", "customer email printed on the invoice")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
