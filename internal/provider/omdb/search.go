package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Digital-Shane/omdb"
	"github.com/vivekv1504/movie-search/internal/provider"
)

// notFound is the Error text OMDb uses for an empty result set
const notFound = "movie not found!"

type searchResponse struct {
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
	Response     string       `json:"Response"`
	Error        string       `json:"Error"`
}

type searchItem struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	ImdbID     string `json:"imdbID"`
	Type       string `json:"Type"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
}

// Search runs an OMDb title search (s=) for the criteria's query
func (p *Provider) Search(ctx context.Context, criteria provider.Criteria, page int) (provider.Page, error) {
	if !p.Configured() {
		return provider.Page{}, &provider.ConfigError{Provider: providerName, Variable: EnvVar}
	}
	if page < 1 {
		page = 1
	}

	query := strings.TrimSpace(criteria.Query)
	if query == "" {
		return provider.Page{}, &provider.ProviderError{
			Provider: providerName,
			Code:     "INVALID_REQUEST",
			Message:  "OMDb search requires a title",
		}
	}

	req, err := p.buildRequest(ctx, map[string]string{
		"s":    query,
		"page": strconv.Itoa(page),
	})
	if err != nil {
		return provider.Page{}, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return provider.Page{}, p.mapError(err, "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return provider.Page{}, p.mapError(err, "")
	}

	var decoded searchResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if decodeErr == nil && decoded.Error != "" {
		if strings.EqualFold(strings.TrimSpace(decoded.Error), notFound) {
			return provider.Page{Results: []provider.Movie{}, Page: page}, nil
		}
		return provider.Page{}, p.mapError(errors.New(decoded.Error), decoded.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return provider.Page{}, p.mapError(fmt.Errorf("omdb: unexpected status %s", resp.Status), "")
	}
	if decodeErr != nil {
		return provider.Page{}, p.mapError(fmt.Errorf("omdb: decode response: %w", decodeErr), "")
	}

	return normalize(decoded, page), nil
}

func normalize(resp searchResponse, page int) provider.Page {
	movies := make([]provider.Movie, 0, len(resp.Search))
	for idx, item := range resp.Search {
		movies = append(movies, provider.Movie{
			// imdbID alone can repeat within one page
			ID:     fmt.Sprintf("%s-%d", item.ImdbID, idx),
			Title:  item.Title,
			Rating: provider.RoundRating(float64(omdb.ParseRating(item.ImdbRating))),
			Year:   firstYear(item.Year),
			Poster: posterURL(item.Poster),
		})
	}
	movies = provider.Finalize(movies, provider.SourceOMDB)

	total, err := strconv.Atoi(strings.TrimSpace(resp.TotalResults))
	if err != nil || total < len(movies) {
		total = len(movies)
	}

	return provider.Page{Results: movies, TotalResults: total, Page: page}
}

func firstYear(value string) string {
	if year := provider.ParseYear(omdb.FirstYear(value)); year != "" {
		return year
	}
	return provider.ParseYear(value)
}

// posterURL treats OMDb's "N/A" sentinel as no image
func posterURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}
