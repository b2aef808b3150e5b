package cli

import (
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/mockapi"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newMockAPICmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve an in-memory stand-in for the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.MockAPIAddr
			}
			if opts.log.GetLevel() < logrus.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			store, err := mockapi.NewStore(opts.log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mockapi.Serve(ctx, addr, mockapi.NewRouter(store, opts.log), opts.log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides MOCK_API_ADDR)")
	return cmd
}
