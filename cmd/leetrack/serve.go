package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leetrack/leetrack-common/pkg/api"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion API for the browser popup",
		Long: `Run the companion API on a local port. The browser popup calls it to track
the page it is on, rate problems and pick the next one.

Examples:
  leetrack serve
  leetrack serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				listen := a.cfg.ListenAddr
				if addr != "" {
					listen = addr
				}

				router := api.NewRouter(a.svc, a.cfg.CORSOrigins, a.logger)
				return api.ListenAndServe(ctx, listen, router, a.logger)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
