package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookfetch/yes24-metadata/internal/api"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP lookup service",
		Long: `Starts an HTTP server exposing the identify and cover operations
plus health and Prometheus metrics endpoints.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			apiServer := api.NewServer(rt.Source, rt.Logger.Named("api"))
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", rt.Config.Server.Port),
				Handler:           apiServer.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				rt.Logger.Info("http server started", zap.Int("port", rt.Config.Server.Port))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					rt.Logger.Error("http server error", zap.Error(err))
					stop()
				}
			}()

			<-ctx.Done()
			rt.Logger.Info("shutdown initiated")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			rt.Logger.Info("shutdown complete")
			return nil
		},
	}
	return cmd
}
