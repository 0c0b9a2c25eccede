// Package api serves the aggregator over HTTP as JSON for browser front ends.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vivekv1504/movie-search/internal/provider"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const maxQueryLength = 200

// Service is what the API exposes
type Service interface {
	SearchMovies(ctx context.Context, criteria provider.Criteria, page int) (provider.Page, error)
	FetchGenres(ctx context.Context) []provider.Genre
	FetchTrailer(ctx context.Context, movie provider.Movie) (*provider.Trailer, error)
}

// Server routes HTTP requests to a Service
type Server struct {
	service  Service
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	limit    rate.Limit
	burst    int
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer serves /metrics from gatherer instead of the default registry
func WithGatherer(gatherer prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithRateLimit sets the per-client request rate. A non-positive rate
// disables limiting.
func WithRateLimit(perSecond float64, burst int) ServerOption {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limit = rate.Inf
		} else {
			s.limit = rate.Limit(perSecond)
		}
		s.burst = burst
	}
}

func NewServer(service Service, options ...ServerOption) *Server {
	s := &Server{
		service:  service,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
		limit:    rate.Inf,
	}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler builds the routed, instrumented handler. Background work started
// for it stops with ctx.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /api/movies", s.handleMovies)
	mux.HandleFunc("GET /api/genres", s.handleGenres)
	mux.HandleFunc("GET /api/trailer", s.handleTrailer)

	var h http.Handler = mux
	h = otelhttp.NewHandler(h, "movie-search",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	h = Metrics(h)
	h = RateLimit(ctx, s.limit, s.burst, s.logger)(h)
	h = Recovery(s.logger)(h)
	h = Logging(s.logger)(h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := provider.Criteria{
		Query: strings.TrimSpace(q.Get("query")),
		Genre: strings.TrimSpace(q.Get("genre")),
	}
	if len(criteria.Query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("query longer than %d characters", maxQueryLength))
		return
	}

	minRating, err := parseFloat(q.Get("minRating"), 0)
	if err != nil || minRating > 10 {
		writeError(w, http.StatusBadRequest, "invalid minRating")
		return
	}
	criteria.MinRating = minRating

	page, err := parseInt(q.Get("page"), 1)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}

	result, err := s.service.SearchMovies(r.Context(), criteria, page)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"genres": s.service.FetchGenres(r.Context()),
	})
}

type trailerResponse struct {
	Trailer *trailerJSON `json:"trailer"`
}

type trailerJSON struct {
	provider.Trailer
	URL string `json:"url"`
}

func (s *Server) handleTrailer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	movie := provider.Movie{
		ID:     strings.TrimSpace(q.Get("id")),
		Title:  strings.TrimSpace(q.Get("title")),
		Year:   strings.TrimSpace(q.Get("year")),
		Source: provider.Source(strings.ToLower(strings.TrimSpace(q.Get("source")))),
	}
	if movie.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(movie.Title) > maxQueryLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("title longer than %d characters", maxQueryLength))
		return
	}

	trailer, err := s.service.FetchTrailer(r.Context(), movie)
	if err != nil {
		s.writeProviderError(w, r, err)
		return
	}

	resp := trailerResponse{}
	if trailer != nil {
		resp.Trailer = &trailerJSON{Trailer: *trailer, URL: trailer.URL()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeProviderError reports an upstream failure with the user-facing
// message. Provider rate limits are passed on as Retry-After.
func (s *Server) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	var perr *provider.ProviderError
	switch {
	case errors.As(err, &perr) && perr.RetryAfter > 0:
		w.Header().Set("Retry-After", strconv.Itoa(perr.RetryAfter))
	case errors.Is(err, provider.ErrNoSource):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to send
		return
	}
	s.logger.WarnContext(r.Context(), "upstream request failed",
		"path", r.URL.Path,
		"error", err,
		"request_id", RequestID(r.Context()),
	)
	writeError(w, status, provider.Message(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func parseFloat(raw string, fallback float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(v >= 0) {
		return 0, errors.New("invalid value")
	}
	return v, nil
}

func parseInt(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("invalid value")
	}
	return v, nil
}
