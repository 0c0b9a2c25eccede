package aggregator

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/vivekv1504/movie-search/internal/metrics"
	"github.com/vivekv1504/movie-search/internal/provider"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// videoSite is the only hosting platform the player understands
	videoSite = "YouTube"

	// searchLimit is how many candidates each keyword search asks for
	searchLimit = 3
)

// queryTemplates are tried in order until one returns any result
var queryTemplates = []string{
	"{title} {year} official trailer",
	"{title} {year} trailer",
	"{title} trailer",
	"{title} {year} teaser",
}

var trailerWords = []string{"trailer", "official", "teaser"}

// FetchTrailer finds a playable trailer for the movie. It first asks the
// primary provider for the movie's own video listing (only for genuine TMDB
// ids), then falls back to keyword video search. (nil, nil) means nothing was
// found; an error means the video search itself failed.
func (a *Aggregator) FetchTrailer(ctx context.Context, movie provider.Movie) (*provider.Trailer, error) {
	key := memoKey(movie)

	ctx, span := a.tracer.Start(ctx, "aggregator.FetchTrailer", trace.WithAttributes(
		attribute.String("movie.id", movie.ID),
		attribute.String("movie.source", string(movie.Source)),
	))
	defer span.End()

	if cached, ok := a.trailers.Load(key); ok {
		metrics.TrailerLookupsTotal.WithLabelValues("memo").Inc()
		return &cached, nil
	}

	if trailer := a.fromListing(ctx, movie); trailer != nil {
		a.remember(key, *trailer)
		metrics.TrailerLookupsTotal.WithLabelValues(string(provider.SourceTMDB)).Inc()
		return trailer, nil
	}

	trailer, err := a.fromSearch(ctx, movie)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, provider.Message(err))
		metrics.TrailerLookupsTotal.WithLabelValues("error").Inc()
		a.logger.WarnContext(ctx, "trailer search failed", "title", movie.Title, "error", err)
		return nil, err
	}
	if trailer == nil {
		metrics.TrailerLookupsTotal.WithLabelValues("none").Inc()
		return nil, nil
	}

	a.remember(key, *trailer)
	metrics.TrailerLookupsTotal.WithLabelValues(string(provider.SourceYouTube)).Inc()
	return trailer, nil
}

func (a *Aggregator) remember(key string, trailer provider.Trailer) {
	a.trailers.Store(key, trailer)
	metrics.TrailerMemoSize.Set(float64(a.trailers.Count()))
}

// memoKey identifies a lookup. Listing results depend on the TMDB id; keyword
// results only on title and year.
func memoKey(movie provider.Movie) string {
	if id, ok := tmdbID(movie); ok {
		return "tmdb:" + strconv.Itoa(id)
	}
	return "search:" + strings.ToLower(strings.TrimSpace(movie.Title)) + "|" + movie.Year
}

// tmdbID reports the movie's TMDB id when it is a genuine positive integer
// that came from TMDB.
func tmdbID(movie provider.Movie) (int, bool) {
	if movie.Source != provider.SourceTMDB {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(movie.ID))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// fromListing is stage one. Every failure here is non-fatal.
func (a *Aggregator) fromListing(ctx context.Context, movie provider.Movie) *provider.Trailer {
	if a.videos == nil {
		return nil
	}
	id, ok := tmdbID(movie)
	if !ok {
		return nil
	}

	start := time.Now()
	videos, err := a.videos.Videos(ctx, id)
	observe(string(provider.SourceTMDB), "videos", start, err)
	if err != nil {
		a.logger.DebugContext(ctx, "video listing failed, falling back to search",
			"movie_id", id,
			"error", err,
		)
		return nil
	}
	return SelectListing(videos)
}

// SelectListing picks from a provider's own video listing: a YouTube
// Trailer, else a YouTube Teaser, else any YouTube video.
func SelectListing(videos []provider.Video) *provider.Trailer {
	pick := func(match func(provider.Video) bool) *provider.Trailer {
		for _, v := range videos {
			if v.Key == "" || !strings.EqualFold(v.Site, videoSite) {
				continue
			}
			if match(v) {
				return &provider.Trailer{
					VideoID: v.Key,
					Title:   v.Title,
					Type:    v.Type,
					Source:  provider.SourceTMDB,
				}
			}
		}
		return nil
	}

	if t := pick(func(v provider.Video) bool { return v.Type == "Trailer" }); t != nil {
		return t
	}
	if t := pick(func(v provider.Video) bool { return v.Type == "Teaser" }); t != nil {
		return t
	}
	return pick(func(provider.Video) bool { return true })
}

// fromSearch is stage two: keyword search over the query templates
func (a *Aggregator) fromSearch(ctx context.Context, movie provider.Movie) (*provider.Trailer, error) {
	if a.videoSearch == nil {
		return nil, nil
	}

	for _, query := range TrailerQueries(movie.Title, movie.Year) {
		start := time.Now()
		videos, err := a.videoSearch.SearchVideos(ctx, query, searchLimit)
		observe(a.videoSearch.Name(), "video_search", start, err)
		if err != nil {
			return nil, classify(a.videoSearch.Name(), err)
		}
		if len(videos) == 0 {
			continue
		}
		return SelectSearchResult(videos), nil
	}
	return nil, nil
}

// TrailerQueries expands the templates for a title and year. An empty year
// collapses the gap it leaves; a query identical to an earlier one is
// skipped.
func TrailerQueries(title, year string) []string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	year = strings.TrimSpace(year)

	queries := make([]string, 0, len(queryTemplates))
	seen := make(map[string]bool, len(queryTemplates))
	for _, tmpl := range queryTemplates {
		q := strings.NewReplacer("{title}", title, "{year}", year).Replace(tmpl)
		q = strings.Join(strings.Fields(q), " ")
		if seen[q] {
			continue
		}
		seen[q] = true
		queries = append(queries, q)
	}
	return queries
}

// SelectSearchResult prefers the first result whose title reads like a
// trailer, else the first result.
func SelectSearchResult(videos []provider.Video) *provider.Trailer {
	if len(videos) == 0 {
		return nil
	}
	chosen := videos[0]
	for _, v := range videos {
		title := strings.ToLower(v.Title)
		if containsAny(title, trailerWords) {
			chosen = v
			break
		}
	}
	return &provider.Trailer{
		VideoID: chosen.Key,
		Title:   chosen.Title,
		Type:    chosen.Type,
		Source:  provider.SourceYouTube,
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
