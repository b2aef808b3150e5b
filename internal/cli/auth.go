package cli

import (
	"context"
	"fmt"

	"storefront/internal/domain"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login USERNAME_OR_EMAIL PASSWORD",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, app *App) error {
				if err := app.Session.Login(ctx, args[0], args[1]); err != nil {
					return err
				}
				return opts.render(cmd, app.Session.Snapshot())
			})
		},
	}
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var req domain.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, app *App) error {
				if err := app.Session.Register(ctx, req); err != nil {
					return err
				}
				return opts.render(cmd, app.Session.Snapshot())
			})
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	for _, name := range []string{"first", "last", "email", "username", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, app *App) error {
				app.Session.Logout(ctx)
				return opts.render(cmd, app.Session.Snapshot())
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, true, func(ctx context.Context, app *App) error {
				return opts.render(cmd, app.Session.Snapshot())
			})
		},
	}
}

// newRefreshCmd trades the stored credential for a fresh one and
// confirms the session with it.
func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, false, func(ctx context.Context, app *App) error {
				if !app.Creds.Has(ctx) {
					app.Navigator.Navigate(app.Config.LoginPath)
					return domain.ErrNotAuthenticated
				}
				resp, err := app.API.RefreshToken(ctx)
				if err != nil {
					return err
				}
				if resp.AccessToken == "" {
					return fmt.Errorf("%w: refresh response has no access token", domain.ErrMalformedResponse)
				}
				if err := app.Creds.Set(ctx, resp.AccessToken); err != nil {
					return err
				}
				app.Session.CheckAuth(ctx)
				return opts.render(cmd, app.Session.Snapshot())
			})
		},
	}
}
