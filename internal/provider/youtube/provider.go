package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vivekv1504/movie-search/internal/provider"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	providerName = "youtube"

	// EnvVar names the credential this provider needs
	EnvVar = "YOUTUBE_API_KEY"
)

// Options configures a Provider
type Options struct {
	APIKey    string
	Transport http.RoundTripper // base transport, defaults to http.DefaultTransport
	Timeout   time.Duration
	Endpoint  string // overrides the API root (tests)
}

// Provider searches YouTube for videos by free text
type Provider struct {
	svc *youtube.Service
}

// New creates a YouTube provider. Without an API key it returns an
// unconfigured provider whose searches fail with a ConfigError.
func New(ctx context.Context, opts Options) (*Provider, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return &Provider{}, nil
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// option.WithAPIKey is ignored once a custom client is supplied, so the
	// key rides on the transport instead.
	client := &http.Client{
		Timeout:   timeout,
		Transport: &transport.APIKey{Key: apiKey, Transport: base},
	}

	clientOpts := []option.ClientOption{option.WithHTTPClient(client)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Provider{svc: svc}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Configured reports whether an API key was supplied
func (p *Provider) Configured() bool {
	return p != nil && p.svc != nil
}

// SearchVideos returns up to limit video results for the query
func (p *Provider) SearchVideos(ctx context.Context, query string, limit int) ([]provider.Video, error) {
	if !p.Configured() {
		return nil, &provider.ConfigError{Provider: providerName, Variable: EnvVar}
	}
	if limit <= 0 {
		limit = 3
	}

	resp, err := p.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}

	videos := make([]provider.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		title := ""
		if item.Snippet != nil {
			title = item.Snippet.Title
		}
		videos = append(videos, provider.Video{
			Key:   item.Id.VideoId,
			Title: title,
			Site:  "YouTube",
		})
	}
	return videos, nil
}

func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &provider.ProviderError{
			Provider: providerName,
			Code:     provider.CodeUnknown,
			Err:      err,
		}
	}

	perr := &provider.ProviderError{
		Provider: providerName,
		Code:     provider.CodeUnknown,
		Message:  strings.TrimSpace(gerr.Message),
		Err:      err,
	}
	switch gerr.Code {
	case http.StatusBadRequest, http.StatusUnauthorized:
		perr.Code = provider.CodeAuthFailed
	case http.StatusForbidden:
		// quotaExceeded comes back as 403
		perr.Code = provider.CodeRateLimited
		perr.Retry = true
		perr.RetryAfter = 3600
	case http.StatusServiceUnavailable:
		perr.Code = provider.CodeUnavailable
		perr.Retry = true
		perr.RetryAfter = 30
	}
	return perr
}
