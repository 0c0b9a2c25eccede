package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Digital-Shane/omdb"
	"github.com/vivekv1504/movie-search/internal/provider"
)

const (
	providerName = "omdb"

	// EnvVar names the credential this provider needs
	EnvVar = "OMDB_API_KEY"
)

// Options configures a Provider
type Options struct {
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	BaseURL    string
}

// Provider is the secondary metadata source backed by OMDb. It only
// supports title search.
type Provider struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// New creates a new OMDb provider instance
func New(opts Options) *Provider {
	p := &Provider{
		httpClient: opts.HTTPClient,
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    opts.BaseURL,
	}
	if p.baseURL == "" {
		p.baseURL = omdb.DefaultURL
	}
	if p.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		p.httpClient = &http.Client{Timeout: timeout}
	}
	return p
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Description returns a human readable description of the provider
func (p *Provider) Description() string {
	return "Open Movie Database (OMDb) title search"
}

// Capabilities returns what this provider can handle
func (p *Provider) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		TitleSearch:  true,
		RequiresAuth: true,
		Priority:     90,
	}
}

// Configured reports whether an API key was supplied
func (p *Provider) Configured() bool {
	return p != nil && p.apiKey != ""
}

// Usable reports whether OMDb can serve the criteria. OMDb has no discovery
// endpoint, so a query is required.
func (p *Provider) Usable(criteria provider.Criteria) bool {
	return p.Configured() && strings.TrimSpace(criteria.Query) != ""
}

func (p *Provider) mapError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	lower := strings.ToLower(err.Error() + " " + message)

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "no api key"):
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeAuthFailed,
			Message:  message,
			Err:      err,
		}
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		return &provider.ProviderError{
			Provider:   providerName,
			Code:       provider.CodeRateLimited,
			Message:    message,
			Retry:      true,
			RetryAfter: 5,
			Err:        err,
		}
	default:
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnknown,
			Message:  message,
			Err:      err,
		}
	}
}

// buildRequest constructs an HTTP request with common parameters applied
func (p *Provider) buildRequest(ctx context.Context, params map[string]string) (*http.Request, error) {
	if p.httpClient == nil {
		return nil, fmt.Errorf("http client not configured")
	}

	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	values.Set("apikey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = values.Encode()
	return req, nil
}
