package cli

import (
	"context"

	"storefront/internal/domain"

	"github.com/spf13/cobra"
)

func newOrdersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List and place orders",
	}
	cmd.AddCommand(newOrdersListCmd(opts))
	cmd.AddCommand(newOrdersGetCmd(opts))
	cmd.AddCommand(newOrdersCreateCmd(opts))
	return cmd
}

// signedIn runs fn only when the stored session is still valid.
func signedIn(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, app *App) error) error {
	return opts.run(cmd, true, func(ctx context.Context, app *App) error {
		if err := app.Guard.RequireAuthenticated(app.Session.Snapshot()); err != nil {
			return err
		}
		return fn(ctx, app)
	})
}

func newOrdersListCmd(opts *rootOptions) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return signedIn(cmd, opts, func(ctx context.Context, app *App) error {
				orders, err := app.API.ListOrders(ctx, pageQuery(cmd, page, size))
				if err != nil {
					return err
				}
				return opts.render(cmd, orders)
			})
		},
	}
	pageFlags(cmd.Flags(), &page, &size)
	return cmd
}

func newOrdersGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "order")
			if err != nil {
				return err
			}
			return signedIn(cmd, opts, func(ctx context.Context, app *App) error {
				order, err := app.API.GetOrder(ctx, id)
				if err != nil {
					return err
				}
				return opts.render(cmd, order)
			})
		},
	}
}

func newOrdersCreateCmd(opts *rootOptions) *cobra.Command {
	var req domain.CreateOrderRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Order the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return signedIn(cmd, opts, func(ctx context.Context, app *App) error {
				order, err := app.API.CreateOrder(ctx, req)
				if err != nil {
					return err
				}
				// The backend empties the cart when an order is placed.
				app.Cart.FetchCart(ctx)
				return opts.render(cmd, order)
			})
		},
	}
	addr := &req.ShippingAddress
	cmd.Flags().StringVar(&addr.AddressLine1, "line1", "", "address line 1")
	cmd.Flags().StringVar(&addr.AddressLine2, "line2", "", "address line 2")
	cmd.Flags().StringVar(&addr.City, "city", "", "city")
	cmd.Flags().StringVar(&addr.State, "state", "", "state or region")
	cmd.Flags().StringVar(&addr.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&addr.Country, "country", "", "country")
	cmd.Flags().StringVar(&req.PaymentMethod, "payment", "", "payment method")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "order notes")
	for _, name := range []string{"line1", "city", "postal-code", "country"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
