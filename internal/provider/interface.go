package provider

import (
	"context"
)

// Source identifies which provider produced a record
type Source string

const (
	SourceTMDB    Source = "tmdb"
	SourceOMDB    Source = "omdb"
	SourceSample  Source = "sample"
	SourceYouTube Source = "youtube"
)

// Movie is the canonical, provider-agnostic movie record. Unknown values use
// zero sentinels so callers never nil-check.
type Movie struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Rating   float64 `json:"rating"`
	Year     string  `json:"year"`
	Overview string  `json:"overview"`
	Poster   string  `json:"poster"`
	Source   Source  `json:"source"`
	Genre    string  `json:"genre,omitempty"` // label, only set by the sample dataset
}

// Criteria is the user's current search input
type Criteria struct {
	Query     string  `json:"query"`
	Genre     string  `json:"genre"`      // genre id, empty means All
	MinRating float64 `json:"min_rating"` // 0 means Any
}

// Genre is a selectable genre filter value
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trailer is a playable video. VideoID is the only field the player needs.
type Trailer struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Type    string `json:"type,omitempty"`
	Source  Source `json:"source"`
}

// URL returns the watch URL for the trailer
func (t Trailer) URL() string {
	return "https://www.youtube.com/watch?v=" + t.VideoID
}

// Page is one page of normalized search results
type Page struct {
	Results      []Movie `json:"results"`
	TotalResults int     `json:"total_results"`
	Page         int     `json:"page"`
}

// MovieSource is a metadata provider strategy. Sources are tried in priority
// order and the first one that reports Usable handles the request.
type MovieSource interface {
	// Identification
	Name() string
	Description() string

	// Capability discovery
	Capabilities() Capabilities
	Usable(criteria Criteria) bool

	// Data fetching
	Search(ctx context.Context, criteria Criteria, page int) (Page, error)
}

// GenreSource is implemented by sources that can list genres
type GenreSource interface {
	Genres(ctx context.Context) ([]Genre, error)
}

// VideoLister lists the videos a provider has attached to one of its own
// movie ids.
type VideoLister interface {
	Videos(ctx context.Context, movieID int) ([]Video, error)
}

// VideoSearcher runs a free-text video search
type VideoSearcher interface {
	Name() string
	SearchVideos(ctx context.Context, query string, limit int) ([]Video, error)
}

// Video is a raw video candidate before trailer selection
type Video struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Site  string `json:"site"`
	Type  string `json:"type"`
}
