// Package cmd defines and implements the CLI commands for the yes24meta executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookfetch/yes24-metadata/internal/config"
	"github.com/bookfetch/yes24-metadata/internal/fetcher"
	"github.com/bookfetch/yes24-metadata/internal/logging"
	"github.com/bookfetch/yes24-metadata/internal/metrics"
	"github.com/bookfetch/yes24-metadata/internal/ratelimit"
	"github.com/bookfetch/yes24-metadata/internal/source"
)

var cfgFile string

// runtimeKeyType is the key for storing the runtime in the command context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// Runtime holds the long-lived services commands work with.
type Runtime struct {
	Config config.Config
	Logger *zap.Logger
	Source *source.Source
}

// Close flushes buffered log output.
func (rt *Runtime) Close() {
	// Sync failures on shutdown are best-effort only.
	_ = rt.Logger.Sync()
}

func newRuntime() (*Runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	f := fetcher.New(fetcher.Config{
		UserAgent: cfg.Source.UserAgent,
		Timeout:   cfg.Timeout(),
	})
	limiter := ratelimit.New(cfg.Delay())
	src := source.New(f, limiter, logger.Named("source"), source.Config{
		MaxCandidates: cfg.Source.MaxCandidates,
	})

	return &Runtime{Config: cfg, Logger: logger, Source: src}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yes24meta",
		Short: "Book metadata and cover lookup against YES24",
		Long: `yes24meta looks up bibliographic metadata and cover images on
www.yes24.com. Given a title, authors, an ISBN or a YES24 goods id it scrapes
the search listing and detail pages and prints structured records.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey, rt))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if rt, ok := cmd.Context().Value(runtimeKey).(*Runtime); ok && rt != nil {
				rt.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults + YES24_* env)")

	cmd.AddCommand(newIdentifyCmd())
	cmd.AddCommand(newCoverCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveRuntime(ctx context.Context) (*Runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*Runtime)
	if !ok || rt == nil {
		return nil, errors.New("services not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() error {
	return newRootCmd().Execute()
}
