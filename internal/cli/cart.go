package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

const MsgCheckoutStub = "Checkout functionality would be implemented here"

func newCartCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
	}
	cmd.AddCommand(newCartShowCmd(opts))
	cmd.AddCommand(newCartAddCmd(opts))
	cmd.AddCommand(newCartUpdateCmd(opts))
	cmd.AddCommand(newCartRemoveCmd(opts))
	cmd.AddCommand(newCartClearCmd(opts))
	cmd.AddCommand(newCartCheckoutCmd(opts))
	cmd.AddCommand(newCartCountCmd(opts))
	cmd.AddCommand(newCartTotalCmd(opts))
	return cmd
}

// cartAction runs fn for a signed-in user and prints the resulting cart.
func cartAction(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, app *App) error) error {
	return opts.run(cmd, true, func(ctx context.Context, app *App) error {
		if err := app.Guard.RequireAuthenticated(app.Session.Snapshot()); err != nil {
			return err
		}
		if err := fn(ctx, app); err != nil {
			return err
		}
		return opts.render(cmd, app.Cart.Snapshot())
	})
}

func newCartShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Fetch and show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, opts, func(ctx context.Context, app *App) error {
				app.Cart.FetchCart(ctx)
				return nil
			})
		},
	}
}

func newCartAddCmd(opts *rootOptions) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0], "product")
			if err != nil {
				return err
			}
			return cartAction(cmd, opts, func(ctx context.Context, app *App) error {
				return app.Cart.AddToCart(ctx, productID, quantity)
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	return cmd
}

func newCartUpdateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update ITEM_ID QUANTITY",
		Short: "Set a line's quantity; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "cart item")
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return cartAction(cmd, opts, func(ctx context.Context, app *App) error {
				return app.Cart.UpdateCartItem(ctx, itemID, quantity)
			})
		},
	}
}

func newCartRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ITEM_ID",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0], "cart item")
			if err != nil {
				return err
			}
			return cartAction(cmd, opts, func(ctx context.Context, app *App) error {
				return app.Cart.RemoveFromCart(ctx, itemID)
			})
		},
	}
}

func newCartClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, opts, func(ctx context.Context, app *App) error {
				return app.Cart.ClearCart(ctx)
			})
		},
	}
}

func newCartCheckoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Check the cart can be ordered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, opts, func(ctx context.Context, app *App) error {
				if err := app.API.ValidateCart(ctx); err != nil {
					return err
				}
				app.Cart.FetchCart(ctx)
				app.Notifier.Success(MsgCheckoutStub)
				return nil
			})
		},
	}
}

func newCartCountCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show how many items the cart holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return signedIn(cmd, opts, func(ctx context.Context, app *App) error {
				count, err := app.API.CartCount(ctx)
				if err != nil {
					return err
				}
				return opts.render(cmd, map[string]int{"count": count})
			})
		},
	}
}

func newCartTotalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Show the cart total as computed by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return signedIn(cmd, opts, func(ctx context.Context, app *App) error {
				total, err := app.API.CartTotal(ctx)
				if err != nil {
					return err
				}
				return opts.render(cmd, map[string]any{"total": total})
			})
		},
	}
}
