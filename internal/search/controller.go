package search

import (
	"slices"
	"strings"
	"time"

	"github.com/vivekv1504/movie-search/internal/provider"
)

// DebounceDelay is the quiet period a query edit waits for before searching
const DebounceDelay = 400 * time.Millisecond

// User-facing trailer notices
const (
	NoTrailerNotice     = "No trailer available"
	TrailerFailedNotice = "Failed to load trailer"
)

// Status is the search lifecycle of the current generation
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusErrored:
		return "errored"
	default:
		return "idle"
	}
}

// Request describes a search the caller should run. A non-zero Delay means
// the caller waits that long and then calls Begin before searching.
type Request struct {
	Generation uint64
	Criteria   provider.Criteria
	Page       int
	Delay      time.Duration
}

// State is a read-only view of the controller
type State struct {
	Criteria     provider.Criteria
	Status       Status
	Results      []provider.Movie
	TotalResults int
	Err          string
	Genres       []provider.Genre
	Generation   uint64

	LoadingTrailer bool
	TrailerFor     string
	ActiveVideoID  string
	ActiveTrailer  *provider.Trailer
	TrailerErr     string
	TrailerNotice  string
}

// Controller owns one session's search state. Transitions are pure: they
// mutate the state and describe the I/O to perform, but never perform it.
// Responses are tagged with the generation or trailer token they were issued
// for and anything superseded is dropped on arrival.
type Controller struct {
	state        State
	trailerToken uint64
	debounce     time.Duration
}

// NewController returns an idle controller. A non-positive debounce uses
// DebounceDelay.
func NewController(debounce time.Duration) *Controller {
	if debounce <= 0 {
		debounce = DebounceDelay
	}
	return &Controller{
		state: State{
			Results: []provider.Movie{},
			Genres:  []provider.Genre{},
		},
		debounce: debounce,
	}
}

// State returns a copy safe to hold after further transitions
func (c *Controller) State() State {
	s := c.state
	s.Results = slices.Clone(s.Results)
	s.Genres = slices.Clone(s.Genres)
	if s.ActiveTrailer != nil {
		t := *s.ActiveTrailer
		s.ActiveTrailer = &t
	}
	return s
}

// Generation returns the current criteria generation
func (c *Controller) Generation() uint64 {
	return c.state.Generation
}

// Criteria returns the current criteria
func (c *Controller) Criteria() provider.Criteria {
	return c.state.Criteria
}

// SetQuery records a query edit. The returned request is debounced; ok is
// false when the trimmed query did not change.
func (c *Controller) SetQuery(query string) (Request, bool) {
	query = strings.TrimSpace(query)
	if query == c.state.Criteria.Query {
		return Request{}, false
	}
	c.state.Criteria.Query = query
	req := c.next()
	req.Delay = c.debounce
	return req, true
}

// SetGenre selects a genre id ("" for all) and searches immediately
func (c *Controller) SetGenre(genre string) (Request, bool) {
	genre = strings.TrimSpace(genre)
	if genre == c.state.Criteria.Genre {
		return Request{}, false
	}
	c.state.Criteria.Genre = genre
	return c.start(), true
}

// SetMinRating sets the rating floor (0 for any) and searches immediately
func (c *Controller) SetMinRating(rating float64) (Request, bool) {
	if rating < 0 {
		rating = 0
	}
	if rating == c.state.Criteria.MinRating {
		return Request{}, false
	}
	c.state.Criteria.MinRating = rating
	return c.start(), true
}

// Refresh searches the current criteria immediately
func (c *Controller) Refresh() Request {
	return c.start()
}

// next starts a new generation without marking it loading
func (c *Controller) next() Request {
	c.state.Generation++
	return Request{
		Generation: c.state.Generation,
		Criteria:   c.state.Criteria,
		Page:       1,
	}
}

func (c *Controller) start() Request {
	req := c.next()
	c.state.Status = StatusLoading
	return req
}

// Begin marks a debounced generation as loading once its delay has elapsed.
// It reports false when a later change superseded gen.
func (c *Controller) Begin(gen uint64) bool {
	if gen != c.state.Generation {
		return false
	}
	c.state.Status = StatusLoading
	return true
}

// Resolve applies a search response issued for gen. Stale responses are
// ignored. A failure clears the result list.
func (c *Controller) Resolve(gen uint64, page provider.Page, err error) bool {
	if gen != c.state.Generation {
		return false
	}
	if err != nil {
		c.state.Status = StatusErrored
		c.state.Err = provider.Message(err)
		c.state.Results = []provider.Movie{}
		c.state.TotalResults = 0
		return true
	}

	c.state.Status = StatusLoaded
	c.state.Err = ""
	c.state.Results = slices.Clone(page.Results)
	if c.state.Results == nil {
		c.state.Results = []provider.Movie{}
	}
	c.state.TotalResults = page.TotalResults
	return true
}

// SetGenres stores the genre list fetched at startup
func (c *Controller) SetGenres(genres []provider.Genre) {
	if genres == nil {
		genres = []provider.Genre{}
	}
	c.state.Genres = slices.Clone(genres)
}

// RequestTrailer starts a trailer lookup for movie and returns its token.
// Earlier lookups still in flight become stale and the previous trailer is
// dismissed.
func (c *Controller) RequestTrailer(movie provider.Movie) uint64 {
	c.trailerToken++
	c.state.LoadingTrailer = true
	c.state.TrailerFor = movie.Title
	c.state.ActiveVideoID = ""
	c.state.ActiveTrailer = nil
	c.state.TrailerNotice = ""
	c.state.TrailerErr = ""
	return c.trailerToken
}

// ResolveTrailer applies the outcome of the lookup identified by token. A nil
// trailer without error is the normal "nothing found" case.
func (c *Controller) ResolveTrailer(token uint64, trailer *provider.Trailer, err error) bool {
	if token != c.trailerToken {
		return false
	}
	c.state.LoadingTrailer = false

	switch {
	case err != nil:
		c.state.TrailerErr = provider.Message(err)
		c.state.TrailerNotice = TrailerFailedNotice
	case trailer == nil || trailer.VideoID == "":
		c.state.TrailerNotice = NoTrailerNotice
	default:
		t := *trailer
		c.state.ActiveTrailer = &t
		c.state.ActiveVideoID = t.VideoID
	}
	return true
}

// CloseTrailer dismisses the player and any pending lookup
func (c *Controller) CloseTrailer() {
	c.trailerToken++
	c.state.LoadingTrailer = false
	c.state.TrailerFor = ""
	c.state.ActiveVideoID = ""
	c.state.ActiveTrailer = nil
	c.state.TrailerNotice = ""
	c.state.TrailerErr = ""
}
