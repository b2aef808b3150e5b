package cli

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/spf13/cobra"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return signedIn(cmd, opts, func(ctx context.Context, app *App) error {
				return opts.render(cmd, app.Session.Snapshot().User)
			})
		},
	})
	cmd.AddCommand(newProfileUpdateCmd(opts))
	return cmd
}

func newProfileUpdateCmd(opts *rootOptions) *cobra.Command {
	var upd domain.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; unset flags are left alone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := profilePatch(cmd, upd)
			if err != nil {
				return err
			}
			return signedIn(cmd, opts, func(ctx context.Context, app *App) error {
				if _, err := app.API.UpdateProfile(ctx, upd); err != nil {
					return err
				}
				app.Session.UpdateUser(ctx, patch)
				return opts.render(cmd, app.Session.Snapshot().User)
			})
		},
	}
	cmd.Flags().StringVar(&upd.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&upd.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&upd.Email, "email", "", "email address")
	cmd.Flags().StringVar(&upd.Username, "username", "", "username")
	return cmd
}

// profilePatch carries exactly the fields the user set. Empty values are
// rejected: the backend ignores them, so the local copy must too.
func profilePatch(cmd *cobra.Command, upd domain.ProfileUpdate) (domain.UserPatch, error) {
	var patch domain.UserPatch
	fields := []struct {
		flag  string
		value *string
		dst   **string
	}{
		{"first", &upd.FirstName, &patch.FirstName},
		{"last", &upd.LastName, &patch.LastName},
		{"email", &upd.Email, &patch.Email},
		{"username", &upd.Username, &patch.Username},
	}
	for _, f := range fields {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if strings.TrimSpace(*f.value) == "" {
			return domain.UserPatch{}, fmt.Errorf("--%s cannot be empty", f.flag)
		}
		*f.dst = f.value
	}
	return patch, nil
}
