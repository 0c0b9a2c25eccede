package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vivekv1504/movie-search/internal/provider"
)

// Searcher is the aggregator surface a session drives
type Searcher interface {
	SearchMovies(ctx context.Context, criteria provider.Criteria, page int) (provider.Page, error)
	FetchGenres(ctx context.Context) []provider.Genre
	FetchTrailer(ctx context.Context, movie provider.Movie) (*provider.Trailer, error)
}

// Session runs a Controller against a Searcher for callers without their own
// event loop. Requests run on goroutines; each new generation cancels the
// search it supersedes. Snapshots are published on Updates, newest wins.
type Session struct {
	mu       sync.Mutex
	ctrl     *Controller
	searcher Searcher
	logger   *slog.Logger
	debounce Debouncer

	ctx           context.Context
	cancel        context.CancelFunc
	searchCancel  context.CancelFunc
	trailerCancel context.CancelFunc
	closed        bool
	wg            sync.WaitGroup

	updates chan State
}

// NewSession creates a session. Call Start to fetch genres and run the
// initial search, and Close when done.
func NewSession(ctx context.Context, searcher Searcher, debounce time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		ctrl:     NewController(debounce),
		searcher: searcher,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		updates:  make(chan State, 1),
	}
}

// Updates delivers state snapshots. Only the latest undelivered snapshot is
// kept. The channel is closed by Close.
func (s *Session) Updates() <-chan State {
	return s.updates
}

// State returns the current snapshot
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.State()
}

// Start fetches the genre list and runs the initial search
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		genres := s.searcher.FetchGenres(s.ctx)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.ctrl.SetGenres(genres)
		s.publish()
	}()

	s.dispatch(s.ctrl.Refresh())
}

// SetQuery records a keystroke-level query edit
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.ctrl.SetQuery(query); ok && !s.closed {
		s.dispatch(req)
	}
}

// SetGenre changes the genre filter
func (s *Session) SetGenre(genre string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.ctrl.SetGenre(genre); ok && !s.closed {
		s.dispatch(req)
	}
}

// SetMinRating changes the rating floor
func (s *Session) SetMinRating(rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.ctrl.SetMinRating(rating); ok && !s.closed {
		s.dispatch(req)
	}
}

// Refresh re-runs the current criteria
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.dispatch(s.ctrl.Refresh())
	}
}

// dispatch must be called with mu held
func (s *Session) dispatch(req Request) {
	if req.Delay > 0 {
		s.debounce.Schedule(req.Delay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed || !s.ctrl.Begin(req.Generation) {
				return
			}
			s.launch(req)
		})
		s.publish()
		return
	}

	s.debounce.Cancel()
	s.launch(req)
}

// launch must be called with mu held
func (s *Session) launch(req Request) {
	if s.searchCancel != nil {
		s.searchCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.searchCancel = cancel
	s.publish()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		page, err := s.searcher.SearchMovies(ctx, req.Criteria, req.Page)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if !s.ctrl.Resolve(req.Generation, page, err) {
			s.logger.Debug("dropping stale search response", "generation", req.Generation)
			return
		}
		s.publish()
	}()
}

// Settle runs a pending debounced search now and waits for all in-flight
// work. Callers must not issue requests while it runs.
func (s *Session) Settle() {
	s.mu.Lock()
	if !s.closed && s.debounce.Pending() {
		s.debounce.Cancel()
		gen := s.ctrl.Generation()
		if s.ctrl.Begin(gen) {
			s.launch(Request{Generation: gen, Criteria: s.ctrl.Criteria(), Page: 1})
		}
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// RequestTrailer looks up a trailer for movie, superseding any earlier
// lookup.
func (s *Session) RequestTrailer(movie provider.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	token := s.ctrl.RequestTrailer(movie)
	if s.trailerCancel != nil {
		s.trailerCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.trailerCancel = cancel
	s.publish()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		trailer, err := s.searcher.FetchTrailer(ctx, movie)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if s.ctrl.ResolveTrailer(token, trailer, err) {
			s.publish()
		}
	}()
}

// CloseTrailer dismisses the active trailer
func (s *Session) CloseTrailer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trailerCancel != nil {
		s.trailerCancel()
		s.trailerCancel = nil
	}
	s.ctrl.CloseTrailer()
	if !s.closed {
		s.publish()
	}
}

// Close cancels outstanding work, waits for it and closes Updates
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()

	s.debounce.Stop()
	s.wg.Wait()
	close(s.updates)
}

// publish must be called with mu held
func (s *Session) publish() {
	snapshot := s.ctrl.State()
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snapshot:
	default:
	}
}
