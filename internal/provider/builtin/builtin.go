// Package builtin builds the provider set from configuration. It lives
// apart from package provider to avoid import cycles.
package builtin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vivekv1504/movie-search/internal/aggregator"
	"github.com/vivekv1504/movie-search/internal/config"
	"github.com/vivekv1504/movie-search/internal/provider"
	"github.com/vivekv1504/movie-search/internal/provider/omdb"
	"github.com/vivekv1504/movie-search/internal/provider/sample"
	"github.com/vivekv1504/movie-search/internal/provider/tmdb"
	"github.com/vivekv1504/movie-search/internal/provider/youtube"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Priorities decide the order sources are tried in
const (
	PriorityTMDB   = 100
	PriorityOMDB   = 90
	PrioritySample = 0
)

// Providers holds every built-in provider and the registry ordering the
// movie sources among them.
type Providers struct {
	Registry *provider.Registry
	TMDB     *tmdb.Provider
	OMDB     *omdb.Provider
	YouTube  *youtube.Provider
	Sample   *sample.Provider
	Demo     bool
}

// Load creates the providers described by cfg. Missing credentials leave
// the dependent provider registered but unusable; demo mode disables the
// live movie sources so the sample dataset always answers.
func Load(ctx context.Context, cfg *config.Config) (*Providers, error) {
	transport := otelhttp.NewTransport(http.DefaultTransport)

	p := &Providers{
		Registry: provider.NewRegistry(),
		TMDB: tmdb.New(tmdb.Options{
			APIKey:    cfg.TMDBAPIKey,
			Language:  cfg.Language,
			CacheTTL:  cfg.CacheTTL,
			RateLimit: cfg.TMDBRateLimit,
			Burst:     cfg.TMDBBurst,
		}),
		OMDB: omdb.New(omdb.Options{
			APIKey:     cfg.OMDBAPIKey,
			HTTPClient: &http.Client{Transport: transport, Timeout: cfg.RequestTimeout},
		}),
		Sample: sample.New(),
		Demo:   cfg.Demo,
	}

	yt, err := youtube.New(ctx, youtube.Options{
		APIKey:    cfg.YouTubeAPIKey,
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube provider: %w", err)
	}
	p.YouTube = yt

	if err := p.Registry.Register(p.TMDB.Name(), p.TMDB, PriorityTMDB); err != nil {
		return nil, fmt.Errorf("failed to register TMDB provider: %w", err)
	}
	if err := p.Registry.Register(p.OMDB.Name(), p.OMDB, PriorityOMDB); err != nil {
		return nil, fmt.Errorf("failed to register OMDB provider: %w", err)
	}
	if err := p.Registry.Register(p.Sample.Name(), p.Sample, PrioritySample); err != nil {
		return nil, fmt.Errorf("failed to register sample provider: %w", err)
	}

	if cfg.Demo {
		for _, name := range []string{p.TMDB.Name(), p.OMDB.Name()} {
			if err := p.Registry.Disable(name); err != nil {
				return nil, err
			}
		}
	}

	return p, nil
}

// Aggregator wires an aggregator over the providers. Demo mode takes its
// genre list from the sample dataset so the genre filter still applies.
func (p *Providers) Aggregator(logger *slog.Logger) *aggregator.Aggregator {
	var genres provider.GenreSource = p.TMDB
	if p.Demo {
		genres = p.Sample
	}
	return aggregator.New(aggregator.Config{
		Registry:    p.Registry,
		Genres:      genres,
		Videos:      p.TMDB,
		VideoSearch: p.YouTube,
		Logger:      logger,
	})
}
