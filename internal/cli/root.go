package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"storefront/config"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	hintLogin = "Not signed in. Run `storefront login USERNAME PASSWORD` to continue."
	hintAdmin = "This command needs an administrator account. Run `storefront login` with one to continue."
)

type rootOptions struct {
	apiURL   string
	output   string
	logLevel string

	cfg *config.Config
	log *logrus.Logger
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Command-line storefront client",
		Long:  "storefront talks to the e-commerce REST backend: sign in, browse products, manage the cart and place orders.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.loadConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "backend base URL (overrides API_URL)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", OutputJSON, "output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newRegisterCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newWhoamiCmd(opts))
	rootCmd.AddCommand(newRefreshCmd(opts))
	rootCmd.AddCommand(newProductsCmd(opts))
	rootCmd.AddCommand(newCartCmd(opts))
	rootCmd.AddCommand(newOrdersCmd(opts))
	rootCmd.AddCommand(newProfileCmd(opts))
	rootCmd.AddCommand(newAdminCmd(opts))
	rootCmd.AddCommand(newMockAPICmd(opts))

	return rootCmd
}

// loadConfig reads the environment, then applies flag overrides.
func (o *rootOptions) loadConfig(cmd *cobra.Command) error {
	bootstrap := config.NewLogger("info", "text")
	if o.logLevel != "" {
		bootstrap = config.NewLogger(o.logLevel, "text")
	}
	cfg, err := config.LoadConfig(bootstrap)
	if err != nil {
		return err
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.output != OutputJSON && o.output != OutputYAML {
		return fmt.Errorf("unknown output format %q (want json or yaml)", o.output)
	}

	o.cfg = cfg
	o.log = config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	o.log.SetOutput(cmd.ErrOrStderr())
	return nil
}

// run builds the app, optionally confirms the stored session with the
// backend, and runs fn. Afterwards it prints a hint when a call asked
// for the login screen or an admin session was missing.
func (o *rootOptions) run(cmd *cobra.Command, checkSession bool, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewApp(ctx, o.cfg, o.log)
	if err != nil {
		return err
	}
	defer app.Close()

	if checkSession {
		app.Session.CheckAuth(ctx)
	}

	err = fn(ctx, app)
	switch {
	case errors.Is(err, domain.ErrNotAdmin):
		fmt.Fprintln(cmd.ErrOrStderr(), hintAdmin)
	case app.LoginRequested():
		fmt.Fprintln(cmd.ErrOrStderr(), hintLogin)
	}
	return err
}

func (o *rootOptions) render(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), o.output, v)
}
