package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tallybooks/tally/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reports as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			defer func() { _ = a.log.Sync() }()

			retained, err := a.cfg.RetainedEarningsOpening()
			if err != nil {
				return err
			}
			svc, repo, release, err := a.reports(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if a.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			opts := []server.Option{
				server.WithLogger(a.log),
				server.WithRetainedOpening(retained),
			}
			if p, ok := repo.(interface{ Ping(context.Context) error }); ok {
				opts = append(opts, server.WithHealthCheck(p.Ping))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.log.Info("serving books",
				zap.String("root", a.root),
				zap.String("storage", a.cfg.Storage.Driver),
				zap.Bool("cache", a.cfg.Cache.RedisURL != ""),
			)
			return server.New(svc, a.cfg.Server, opts...).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from tally.yaml)")
	return cmd
}
