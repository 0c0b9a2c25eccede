package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vivekv1504/movie-search/internal/aggregator"
	"github.com/vivekv1504/movie-search/internal/config"
	"github.com/vivekv1504/movie-search/internal/log"
	"github.com/vivekv1504/movie-search/internal/provider/builtin"

	"github.com/spf13/cobra"
)

// buildAggregator creates the providers described by cfg and the aggregator
// over them.
func buildAggregator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*builtin.Providers, *aggregator.Aggregator, error) {
	providers, err := builtin.Load(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load providers: %w", err)
	}
	return providers, providers.Aggregator(logger), nil
}

// setup is the shared start of every non-interactive command: config, a
// stderr logger, and the aggregator.
func setup(cmd *cobra.Command, opts *globalOptions) (*config.Config, *slog.Logger, *aggregator.Aggregator, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := log.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

	_, agg, err := buildAggregator(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, agg, nil
}
