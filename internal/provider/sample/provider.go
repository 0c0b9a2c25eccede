package sample

import (
	"context"
	"strings"

	"github.com/vivekv1504/movie-search/internal/provider"
	"golang.org/x/text/cases"
)

const (
	providerName = "sample"
)

// movies is the built-in dataset used offline and in demo mode
var movies = []provider.Movie{
	{
		ID:       "sample-1",
		Title:    "They call Him OG",
		Genre:    "Drama",
		Rating:   8.1,
		Year:     "2020",
		Overview: "A moving story about community and courage.",
	},
	{
		ID:       "sample-2",
		Title:    "Space Trails",
		Genre:    "Sci-Fi",
		Rating:   7.4,
		Year:     "2019",
		Overview: "A crew makes a surprising discovery traveling between stars.",
	},
	{
		ID:       "sample-3",
		Title:    "K-Ramp",
		Genre:    "Comedy",
		Rating:   8.8,
		Year:     "2025",
		Overview: "A group of friends tries to win a local comedy contest.",
	},
	{
		ID:       "sample-4",
		Title:    "Little Hearts",
		Genre:    "Comedy",
		Rating:   9.8,
		Year:     "2025",
		Overview: "A  comedy Love story.",
	},
}

// genreNames maps TMDB movie genre ids to the labels used by the dataset, so a
// genre picked from TMDB's list still filters sample movies.
var genreNames = map[string]string{
	"28":    "Action",
	"12":    "Adventure",
	"16":    "Animation",
	"35":    "Comedy",
	"80":    "Crime",
	"99":    "Documentary",
	"18":    "Drama",
	"10751": "Family",
	"14":    "Fantasy",
	"36":    "History",
	"27":    "Horror",
	"10402": "Music",
	"9648":  "Mystery",
	"10749": "Romance",
	"878":   "Sci-Fi",
	"10770": "TV Movie",
	"53":    "Thriller",
	"10752": "War",
	"37":    "Western",
}

// Provider serves the fixed sample dataset. It is always usable and sits at
// the bottom of the registry.
type Provider struct{}

// New creates a new sample provider instance
func New() *Provider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Description returns the provider description
func (p *Provider) Description() string {
	return "Built-in sample movies for offline and demo use"
}

// Capabilities returns what this provider can do
func (p *Provider) Capabilities() provider.Capabilities {
	return provider.Capabilities{
		TitleSearch:  true,
		Discovery:    true,
		RequiresAuth: false,
		Priority:     0,
	}
}

// Usable always reports true
func (p *Provider) Usable(provider.Criteria) bool {
	return true
}

// Search filters the dataset locally: minimum rating first, then genre, then
// a case-insensitive title substring. Order is preserved and the page is
// always 1.
func (p *Provider) Search(ctx context.Context, criteria provider.Criteria, _ int) (provider.Page, error) {
	if err := ctx.Err(); err != nil {
		return provider.Page{}, err
	}

	// Casers carry state, so each call gets its own
	fold := cases.Fold()
	genre := GenreLabel(criteria.Genre)
	query := fold.String(strings.TrimSpace(criteria.Query))

	results := make([]provider.Movie, 0, len(movies))
	for _, m := range movies {
		if m.Rating < criteria.MinRating {
			continue
		}
		if genre != "" && fold.String(m.Genre) != fold.String(genre) {
			continue
		}
		if query != "" && !strings.Contains(fold.String(m.Title), query) {
			continue
		}
		m.Source = provider.SourceSample
		results = append(results, m)
	}

	return provider.Page{Results: results, TotalResults: len(results), Page: 1}, nil
}

// Genres lists the labels present in the dataset, first-seen order
func (p *Provider) Genres(context.Context) ([]provider.Genre, error) {
	seen := make(map[string]bool)
	genres := make([]provider.Genre, 0)
	for _, m := range movies {
		if seen[m.Genre] {
			continue
		}
		seen[m.Genre] = true
		genres = append(genres, provider.Genre{ID: m.Genre, Name: m.Genre})
	}
	return genres, nil
}

// GenreLabel resolves a genre value to the dataset's label. TMDB ids map
// through the fixed table; anything else is treated as a label already.
func GenreLabel(value string) string {
	value = strings.TrimSpace(value)
	if name, ok := genreNames[value]; ok {
		return name
	}
	return value
}
