package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/geostack-labs/geoforge/internal/config"
	"github.com/geostack-labs/geoforge/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build tools over HTTP",
		Long: `Start an HTTP server exposing the build tools.

Each tool accepts the same request shape as the corresponding CLI command
via POST /tools/{pointset,lineset,holes,intervals}. Requests are dry runs
unless dry_run is false in the body.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd, false)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.NewServer(server.Config{
				Service:   cc.Service,
				Directory: cc.Client,
				Addr:      cc.Cfg.Listen,
				Logger:    config.GetLogger(cmd.Context()),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}

	return cmd
}
