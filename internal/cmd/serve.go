package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vivekv1504/movie-search/internal/api"
	"github.com/vivekv1504/movie-search/internal/config"
	"github.com/vivekv1504/movie-search/internal/metrics"
	"github.com/vivekv1504/movie-search/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the movie search JSON API",
		Long: `Serve the movie search API over HTTP:

  GET /api/movies?query=&genre=&minRating=&page=
  GET /api/genres
  GET /api/trailer?id=&title=&year=&source=
  GET /health
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, agg, err := setup(cmd, global)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.HTTPAddr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
			}
			return serve(ctx, ln, cfg, logger, agg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// serve runs the API on ln until ctx is done, then shuts down gracefully
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, logger *slog.Logger, service api.Service) error {
	shutdownTracing, err := telemetry.Init(ctx, "movie-search", cfg.TraceExporter, os.Stderr)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	handlerCtx, cancelHandler := context.WithCancel(ctx)
	defer cancelHandler()

	handler := api.NewServer(service,
		api.WithLogger(logger),
		api.WithGatherer(registry),
		api.WithRateLimit(cfg.HTTPRateLimit, cfg.HTTPBurst),
	).Handler(handlerCtx)

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	logger.Info("movie search API started",
		slog.String("addr", ln.Addr().String()),
		slog.Bool("demo", cfg.Demo),
		slog.Duration("timeout", cfg.RequestTimeout),
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("movie search API stopped")
	return nil
}
