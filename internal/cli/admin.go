package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newAdminCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator views",
	}

	var usersPage, usersSize int
	users := &cobra.Command{
		Use:   "users",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminOnly(cmd, opts, func(ctx context.Context, app *App) error {
				page, err := app.API.ListUsersAdmin(ctx, pageQuery(cmd, usersPage, usersSize))
				if err != nil {
					return err
				}
				return opts.render(cmd, page)
			})
		},
	}
	pageFlags(users.Flags(), &usersPage, &usersSize)

	var ordersPage, ordersSize int
	orders := &cobra.Command{
		Use:   "orders",
		Short: "List every order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminOnly(cmd, opts, func(ctx context.Context, app *App) error {
				page, err := app.API.ListOrdersAdmin(ctx, pageQuery(cmd, ordersPage, ordersSize))
				if err != nil {
					return err
				}
				return opts.render(cmd, page)
			})
		},
	}
	pageFlags(orders.Flags(), &ordersPage, &ordersSize)

	cmd.AddCommand(users, orders)
	return cmd
}

func adminOnly(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, app *App) error) error {
	return opts.run(cmd, true, func(ctx context.Context, app *App) error {
		if err := app.Guard.RequireAdmin(app.Session.Snapshot()); err != nil {
			return err
		}
		return fn(ctx, app)
	})
}
