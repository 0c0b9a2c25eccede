package tmdb

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
	"github.com/vivekv1504/movie-search/internal/provider"
)

// Search runs a title search when the criteria carry a query and a
// popularity-sorted discovery otherwise. Genre and minimum rating only apply
// to discovery; TMDB's search endpoint ignores them.
func (p *Provider) Search(ctx context.Context, criteria provider.Criteria, page int) (provider.Page, error) {
	if p.client == nil {
		return provider.Page{}, p.configError()
	}
	if page < 1 {
		page = 1
	}

	if query := strings.TrimSpace(criteria.Query); query != "" {
		return p.searchTitle(ctx, query, page)
	}
	return p.discover(ctx, criteria, page)
}

func (p *Provider) searchTitle(ctx context.Context, query string, page int) (provider.Page, error) {
	options := map[string]string{
		"language": p.language,
		"page":     strconv.Itoa(page),
	}

	cacheKey := buildCacheKey("search", query, options)
	if cached, ok := p.cachedPage(cacheKey); ok {
		return cached, nil
	}

	if err := p.wait(ctx); err != nil {
		return provider.Page{}, err
	}

	results, err := p.client.SearchMovie(query, options)
	if err != nil {
		return provider.Page{}, p.mapError(err)
	}
	if results == nil {
		return emptyPage(page), nil
	}

	out := normalizePage(results.Results, results.TotalResults, results.Page, page)
	p.storePage(cacheKey, out)
	return out, nil
}

// DiscoverOptions builds the discovery query for the criteria. The rating
// floor is always sent; the genre constraint only when a genre is selected.
func DiscoverOptions(criteria provider.Criteria, page int, language string) map[string]string {
	options := map[string]string{
		"sort_by":          "popularity.desc",
		"vote_average.gte": strconv.FormatFloat(criteria.MinRating, 'f', -1, 64),
		"page":             strconv.Itoa(page),
	}
	if language != "" {
		options["language"] = language
	}
	if genre := strings.TrimSpace(criteria.Genre); genre != "" {
		options["with_genres"] = genre
	}
	return options
}

func (p *Provider) discover(ctx context.Context, criteria provider.Criteria, page int) (provider.Page, error) {
	options := DiscoverOptions(criteria, page, p.language)

	cacheKey := buildCacheKey("discover", "", options)
	if cached, ok := p.cachedPage(cacheKey); ok {
		return cached, nil
	}

	if err := p.wait(ctx); err != nil {
		return provider.Page{}, err
	}

	results, err := p.client.DiscoverMovie(options)
	if err != nil {
		return provider.Page{}, p.mapError(err)
	}
	if results == nil {
		return emptyPage(page), nil
	}

	out := normalizePage(results.Results, results.TotalResults, results.Page, page)
	p.storePage(cacheKey, out)
	return out, nil
}

// Genres returns TMDB's movie genre list
func (p *Provider) Genres(ctx context.Context) ([]provider.Genre, error) {
	if p.client == nil {
		return nil, p.configError()
	}

	cacheKey := "genres:" + p.language
	if p.cache != nil {
		if cached, found := p.cache.Get(cacheKey); found {
			if genres, ok := cached.([]provider.Genre); ok {
				return slices.Clone(genres), nil
			}
		}
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	result, err := p.client.GetMovieGenres(map[string]string{"language": p.language})
	if err != nil {
		return nil, p.mapError(err)
	}

	genres := make([]provider.Genre, 0)
	if result != nil {
		for _, g := range result.Genres {
			if strings.TrimSpace(g.Name) == "" {
				continue
			}
			genres = append(genres, provider.Genre{
				ID:   strconv.Itoa(int(g.ID)),
				Name: g.Name,
			})
		}
	}

	if p.cache != nil {
		p.cache.Set(cacheKey, slices.Clone(genres), cache.DefaultExpiration)
	}
	return genres, nil
}

// Videos lists the videos TMDB has attached to a movie id
func (p *Provider) Videos(ctx context.Context, movieID int) ([]provider.Video, error) {
	if p.client == nil {
		return nil, p.configError()
	}
	if movieID <= 0 {
		return nil, fmt.Errorf("invalid TMDB movie id %d", movieID)
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	result, err := p.client.GetMovieVideos(movieID, map[string]string{"language": p.language})
	if err != nil {
		return nil, p.mapError(err)
	}

	videos := make([]provider.Video, 0)
	if result == nil {
		return videos, nil
	}
	for _, v := range result.Results {
		videos = append(videos, provider.Video{
			Key:   v.Key,
			Title: v.Name,
			Site:  v.Site,
			Type:  v.Type,
		})
	}
	return videos, nil
}

func (p *Provider) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.rateLimiter == nil {
		return nil
	}
	return p.rateLimiter.wait(ctx)
}

// normalizePage converts TMDB short movie records into canonical movies
func normalizePage(items []tmdb.MovieShort, total, gotPage, wantPage int) provider.Page {
	movies := make([]provider.Movie, 0, len(items))
	for _, item := range items {
		movies = append(movies, movieShortToMovie(item))
	}
	movies = provider.Finalize(movies, provider.SourceTMDB)

	if gotPage < 1 {
		gotPage = wantPage
	}
	if total < len(movies) {
		total = len(movies)
	}
	return provider.Page{Results: movies, TotalResults: total, Page: gotPage}
}

func movieShortToMovie(item tmdb.MovieShort) provider.Movie {
	id := ""
	if item.ID > 0 {
		id = strconv.Itoa(int(item.ID))
	}
	return provider.Movie{
		ID:       id,
		Title:    item.Title,
		Rating:   provider.RoundRating(float64(item.VoteAverage)),
		Year:     provider.DateYear(item.ReleaseDate),
		Overview: item.Overview,
		Poster:   PosterURL(item.PosterPath),
	}
}

// PosterURL builds an absolute poster URL, or "" when there is no path
func PosterURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return PosterBase + path
}

func emptyPage(page int) provider.Page {
	return provider.Page{Results: []provider.Movie{}, Page: page}
}

// buildCacheKey renders options in a stable order
func buildCacheKey(kind, query string, options map[string]string) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(kind)
	b.WriteString(":")
	b.WriteString(strings.ToLower(query))
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(options[k])
	}
	return b.String()
}

func (p *Provider) cachedPage(key string) (provider.Page, bool) {
	if p.cache == nil {
		return provider.Page{}, false
	}
	cached, found := p.cache.Get(key)
	if !found {
		return provider.Page{}, false
	}
	page, ok := cached.(provider.Page)
	if !ok {
		return provider.Page{}, false
	}
	page.Results = slices.Clone(page.Results)
	return page, true
}

func (p *Provider) storePage(key string, page provider.Page) {
	if p.cache == nil {
		return
	}
	page.Results = slices.Clone(page.Results)
	p.cache.Set(key, page, cache.DefaultExpiration)
}
