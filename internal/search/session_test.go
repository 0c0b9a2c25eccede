package search

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vivekv1504/movie-search/internal/provider"
)

type gatedSearcher struct {
	mu      sync.Mutex
	pages   map[string]provider.Page
	gates   map[string]chan struct{}
	started chan string
	genres  []provider.Genre
	trailer *provider.Trailer
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{
		pages:   map[string]provider.Page{},
		gates:   map[string]chan struct{}{},
		started: make(chan string, 16),
	}
}

func (g *gatedSearcher) SearchMovies(_ context.Context, criteria provider.Criteria, _ int) (provider.Page, error) {
	g.mu.Lock()
	gate := g.gates[criteria.Query]
	result := g.pages[criteria.Query]
	g.mu.Unlock()

	g.started <- criteria.Query
	if gate != nil {
		<-gate
	}
	return result, nil
}

func (g *gatedSearcher) FetchGenres(context.Context) []provider.Genre {
	return g.genres
}

func (g *gatedSearcher) FetchTrailer(context.Context, provider.Movie) (*provider.Trailer, error) {
	return g.trailer, nil
}

func waitStarted(t *testing.T, g *gatedSearcher, want string) {
	t.Helper()
	select {
	case got := <-g.started:
		if got != want {
			t.Fatalf("search started for %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("search for %q never started", want)
	}
}

func waitState(t *testing.T, s *Session, match func(State) bool) State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-s.Updates():
			if !ok {
				t.Fatal("updates closed")
			}
			if match(st) {
				return st
			}
		case <-timeout:
			t.Fatalf("state never matched; last = %+v", s.State())
		}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionSlowEarlierSearchDoesNotOverwriteLater(t *testing.T) {
	g := newGatedSearcher()
	g.pages["ali"] = page("Ali", "Alice")
	g.pages["alien"] = page("Alien", "Aliens")
	g.gates["ali"] = make(chan struct{})

	s := NewSession(context.Background(), g, time.Millisecond, quietLogger())

	s.SetQuery("ali")
	waitStarted(t, g, "ali")

	s.SetQuery("alien")
	waitStarted(t, g, "alien")
	waitState(t, s, func(st State) bool {
		return st.Status == StatusLoaded && st.Criteria.Query == "alien"
	})

	close(g.gates["ali"])
	s.Close()

	got := s.State()
	if diff := cmp.Diff([]string{"Alien", "Aliens"}, titles(got.Results)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
	if got.Generation != 2 {
		t.Errorf("Generation = %d, want 2", got.Generation)
	}
}

func TestSessionStartLoadsGenresAndResults(t *testing.T) {
	g := newGatedSearcher()
	g.pages[""] = page("Heat")
	g.genres = []provider.Genre{{ID: "28", Name: "Action"}}

	s := NewSession(context.Background(), g, 0, quietLogger())
	defer s.Close()

	s.Start()
	waitStarted(t, g, "")

	st := waitState(t, s, func(st State) bool {
		return st.Status == StatusLoaded && len(st.Genres) == 1
	})
	if diff := cmp.Diff([]string{"Heat"}, titles(st.Results)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionTrailer(t *testing.T) {
	g := newGatedSearcher()
	g.trailer = &provider.Trailer{VideoID: "YoHD9XEInc0", Source: provider.SourceTMDB}

	s := NewSession(context.Background(), g, 0, quietLogger())
	defer s.Close()

	s.RequestTrailer(provider.Movie{ID: "27205", Title: "Inception", Source: provider.SourceTMDB})
	waitState(t, s, func(st State) bool {
		return !st.LoadingTrailer && st.ActiveVideoID == "YoHD9XEInc0"
	})

	s.CloseTrailer()
	if got := s.State().ActiveVideoID; got != "" {
		t.Errorf("ActiveVideoID = %q after CloseTrailer", got)
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	s := NewSession(context.Background(), newGatedSearcher(), 0, quietLogger())
	s.Close()
	s.Close()

	if _, ok := <-s.Updates(); ok {
		t.Error("Updates() still open after Close")
	}
}

func TestSessionSettleFlushesPendingSearch(t *testing.T) {
	g := newGatedSearcher()
	g.pages["heat"] = page("Heat")

	s := NewSession(context.Background(), g, time.Hour, quietLogger())
	defer s.Close()

	s.SetQuery("heat")
	if got := s.State().Status; got != StatusIdle {
		t.Fatalf("Status before Settle = %v, want idle", got)
	}

	s.Settle()
	got := s.State()
	if got.Status != StatusLoaded {
		t.Fatalf("Status after Settle = %v, want loaded", got.Status)
	}
	if diff := cmp.Diff([]string{"Heat"}, titles(got.Results)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}
