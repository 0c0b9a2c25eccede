package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mhmtszr/concurrent-swiss-map"
	"github.com/vivekv1504/movie-search/internal/metrics"
	"github.com/vivekv1504/movie-search/internal/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vivekv1504/movie-search/internal/aggregator"

// Aggregator picks a movie source per request, normalizes what it returns and
// resolves trailers through the listing-then-search fallback chain. It keeps
// no session state; the only thing it remembers is trailers already found.
type Aggregator struct {
	registry    *provider.Registry
	genres      provider.GenreSource
	videos      provider.VideoLister
	videoSearch provider.VideoSearcher
	logger      *slog.Logger
	tracer      trace.Tracer

	trailers *csmap.CsMap[string, provider.Trailer]
}

// Config wires the aggregator to its providers. Genres, Videos and
// VideoSearch are optional; a provider that reports itself unconfigured is
// treated as absent.
type Config struct {
	Registry    *provider.Registry
	Genres      provider.GenreSource
	Videos      provider.VideoLister
	VideoSearch provider.VideoSearcher
	Logger      *slog.Logger
}

// New constructs an aggregator with sane defaults applied.
func New(cfg Config) *Aggregator {
	registry := cfg.Registry
	if registry == nil {
		registry = provider.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Aggregator{
		registry: registry,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		trailers: csmap.Create[string, provider.Trailer](),
	}
	if available(cfg.Genres) {
		a.genres = cfg.Genres
	}
	if available(cfg.Videos) {
		a.videos = cfg.Videos
	}
	if available(cfg.VideoSearch) {
		a.videoSearch = cfg.VideoSearch
	}
	return a
}

type configurable interface {
	Configured() bool
}

func available(v any) bool {
	if v == nil {
		return false
	}
	if c, ok := v.(configurable); ok {
		return c.Configured()
	}
	return true
}

// Registry exposes the source registry (for listing and explicit selection)
func (a *Aggregator) Registry() *provider.Registry {
	return a.registry
}

// SearchMovies resolves criteria to one page of normalized movies using the
// first usable source in priority order.
func (a *Aggregator) SearchMovies(ctx context.Context, criteria provider.Criteria, page int) (provider.Page, error) {
	source, ok := a.registry.Select(criteria)
	if !ok {
		return provider.Page{}, provider.ErrNoSource
	}
	return a.search(ctx, source, criteria, page)
}

// SearchWith runs the search on the named source even when it would not be
// selected. A source missing its credential fails with *provider.ConfigError.
func (a *Aggregator) SearchWith(ctx context.Context, name string, criteria provider.Criteria, page int) (provider.Page, error) {
	source, ok := a.registry.Get(name)
	if !ok {
		return provider.Page{}, fmt.Errorf("unknown provider %q", name)
	}
	return a.search(ctx, source, criteria, page)
}

func (a *Aggregator) search(ctx context.Context, source provider.MovieSource, criteria provider.Criteria, page int) (provider.Page, error) {
	if page < 1 {
		page = 1
	}
	name := source.Name()

	ctx, span := a.tracer.Start(ctx, "aggregator.SearchMovies", trace.WithAttributes(
		attribute.String("provider", name),
		attribute.String("query", criteria.Query),
		attribute.String("genre", criteria.Genre),
		attribute.Float64("min_rating", criteria.MinRating),
		attribute.Int("page", page),
	))
	defer span.End()

	start := time.Now()
	result, err := source.Search(ctx, criteria, page)
	observe(name, "search", start, err)

	if err != nil {
		err = classify(name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, provider.Message(err))
		a.logger.WarnContext(ctx, "movie search failed",
			"provider", name,
			"query", criteria.Query,
			"error", err,
		)
		return provider.Page{}, err
	}

	result = normalize(result, page)
	span.SetAttributes(attribute.Int("results", len(result.Results)))
	a.logger.DebugContext(ctx, "movie search",
		"provider", name,
		"query", criteria.Query,
		"genre", criteria.Genre,
		"min_rating", criteria.MinRating,
		"results", len(result.Results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// classify makes sure every failure reaching callers is typed. Config and
// context errors pass through; anything else becomes a ProviderError.
func classify(name string, err error) error {
	var cfgErr *provider.ConfigError
	var perr *provider.ProviderError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &perr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &provider.ProviderError{
		Provider: name,
		Code:     provider.CodeUnknown,
		Err:      err,
	}
}

// normalize enforces the page-level invariants regardless of source
func normalize(page provider.Page, requested int) provider.Page {
	source := provider.SourceSample
	if len(page.Results) > 0 && page.Results[0].Source != "" {
		source = page.Results[0].Source
	}
	results := provider.Finalize(page.Results, source)
	for i := range results {
		results[i].Rating = provider.RoundRating(results[i].Rating)
	}
	page.Results = results

	if page.Page < 1 {
		page.Page = requested
	}
	if page.TotalResults < len(results) {
		page.TotalResults = len(results)
	}
	return page
}

// FetchGenres returns the primary provider's genre list. It never fails: a
// missing credential or a provider error yields an empty list.
func (a *Aggregator) FetchGenres(ctx context.Context) []provider.Genre {
	if a.genres == nil {
		return []provider.Genre{}
	}

	ctx, span := a.tracer.Start(ctx, "aggregator.FetchGenres")
	defer span.End()

	start := time.Now()
	genres, err := a.genres.Genres(ctx)
	observe(nameOf(a.genres, "genres"), "genres", start, err)
	if err != nil {
		span.RecordError(err)
		a.logger.DebugContext(ctx, "genre fetch failed", "error", err)
		return []provider.Genre{}
	}
	if genres == nil {
		return []provider.Genre{}
	}
	return genres
}

func nameOf(v any, fallback string) string {
	if named, ok := v.(interface{ Name() string }); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return fallback
}

func observe(name, operation string, start time.Time, err error) {
	metrics.ProviderRequestsTotal.WithLabelValues(name, operation, metrics.Status(err)).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(name, operation).Observe(time.Since(start).Seconds())
}
