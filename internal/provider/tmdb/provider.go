package tmdb

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
	"github.com/vivekv1504/movie-search/internal/provider"
)

const (
	providerName = "tmdb"

	// PosterBase is prefixed to TMDB's relative poster paths
	PosterBase = "https://image.tmdb.org/t/p/w342"

	// EnvVar names the credential this provider needs
	EnvVar = "TMDB_API_KEY"
)

// Client is the subset of *tmdb.TMDb the provider uses (mocked in tests)
type Client interface {
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	DiscoverMovie(options map[string]string) (*tmdb.MoviePagedResults, error)
	GetMovieGenres(options map[string]string) (*tmdb.Genre, error)
	GetMovieVideos(id int, options map[string]string) (*tmdb.MovieVideos, error)
}

// Options configures a Provider
type Options struct {
	APIKey    string
	Language  string
	CacheTTL  time.Duration // zero disables the response cache
	RateLimit float64       // requests per second, zero disables limiting
	Burst     int
}

// Provider is the primary metadata source backed by The Movie Database
type Provider struct {
	client      Client
	cache       *cache.Cache
	language    string
	rateLimiter *rateLimiter
}

// New creates a TMDB provider. Without an API key the provider stays
// registered but never reports itself usable.
func New(opts Options) *Provider {
	p := &Provider{
		language:    opts.Language,
		rateLimiter: newRateLimiter(opts.RateLimit, opts.Burst),
	}
	if p.language == "" {
		p.language = "en-US"
	}

	if apiKey := strings.TrimSpace(opts.APIKey); apiKey != "" {
		p.client = tmdb.Init(tmdb.Config{
			APIKey:   apiKey,
			Proxies:  nil,
			UseProxy: false,
		})
	}

	if opts.CacheTTL > 0 {
		p.cache = cache.New(opts.CacheTTL, 10*time.Minute)
	}

	return p
}

// SetClient sets the TMDB client (for testing)
func (p *Provider) SetClient(client Client) {
	p.client = client
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Description returns the provider description
func (p *Provider) Description() string {
	return "The Movie Database (TMDB) search and discovery"
}

// Capabilities returns what this provider can do
func (p *Provider) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		TitleSearch:  true,
		Discovery:    true,
		RequiresAuth: true,
		Priority:     100,
	}
}

// Configured reports whether an API key was supplied
func (p *Provider) Configured() bool {
	return p != nil && p.client != nil
}

// Usable reports whether TMDB can serve the criteria. It handles both title
// search and discovery, so only the credential matters.
func (p *Provider) Usable(provider.Criteria) bool {
	return p.Configured()
}

func (p *Provider) configError() error {
	return &provider.ConfigError{Provider: providerName, Variable: EnvVar}
}

// statusRe matches the errors go-tmdb builds from TMDB's error body
var statusRe = regexp.MustCompile(`^Code \((\d+)\): (.*)$`)

// TMDB status_code values that classify an error
const (
	statusInvalidService = 2
	statusAuthFailed     = 3
	statusInvalidKey     = 7
	statusSuspended      = 10
	statusInternal       = 11
	statusTokenRequired  = 14
	statusBackendTimeout = 24
	statusRateLimited    = 25
	statusNotFound       = 34
	statusBackendDown    = 43
	statusMaintenance    = 46
)

// statusMessage splits a go-tmdb error into TMDB's status_code and
// status_message. ok is false for transport errors.
func statusMessage(err error) (code int, message string, ok bool) {
	m := statusRe.FindStringSubmatch(strings.TrimSpace(err.Error()))
	if m == nil {
		return 0, "", false
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, "", false
	}
	return code, strings.TrimSpace(m[2]), true
}

// mapError maps TMDB errors to provider errors
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if code, message, ok := statusMessage(err); ok {
		return statusError(code, message, err)
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "invalid api key"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Err:      err,
		}
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Retry:      true,
			RetryAfter: 10,
			Err:        err,
		}
	case strings.Contains(errStr, "503") || strings.Contains(errStr, "unavailable"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeUnavailable,
			Retry:      true,
			RetryAfter: 30,
			Err:        err,
		}
	case strings.Contains(errStr, "404") || strings.Contains(errStr, "not found"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeNotFound,
			Err:      err,
		}
	}

	return &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Err:      err,
	}
}

func statusError(code int, message string, err error) error {
	perr := &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Message:  message,
		Err:      err,
	}
	switch code {
	case statusInvalidService, statusAuthFailed, statusInvalidKey, statusSuspended, statusTokenRequired:
		perr.Code = provider.CodeAuthFailed
	case statusRateLimited:
		perr.Code = provider.CodeRateLimited
		perr.Retry = true
		perr.RetryAfter = 10
	case statusNotFound:
		perr.Code = provider.CodeNotFound
	case statusInternal, statusBackendTimeout, statusBackendDown, statusMaintenance:
		perr.Code = provider.CodeUnavailable
		perr.Retry = true
		perr.RetryAfter = 30
	}
	return perr
}
