package search

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vivekv1504/movie-search/internal/provider"
)

func page(titles ...string) provider.Page {
	movies := make([]provider.Movie, 0, len(titles))
	for i, title := range titles {
		movies = append(movies, provider.Movie{ID: title + "-" + string(rune('0'+i)), Title: title})
	}
	return provider.Page{Results: movies, TotalResults: len(movies), Page: 1}
}

func titles(movies []provider.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Title)
	}
	return out
}

func TestSetQueryIsDebounced(t *testing.T) {
	c := NewController(0)

	req, ok := c.SetQuery("  alien ")
	if !ok {
		t.Fatal("SetQuery() ok = false, want true")
	}
	want := Request{
		Generation: 1,
		Criteria:   provider.Criteria{Query: "alien"},
		Page:       1,
		Delay:      DebounceDelay,
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("SetQuery() mismatch (-want +got):\n%s", diff)
	}
	if got := c.State().Status; got != StatusIdle {
		t.Errorf("Status = %v before the debounce fires, want idle", got)
	}

	if _, ok := c.SetQuery("alien"); ok {
		t.Error("SetQuery() with an unchanged query returned a request")
	}

	if !c.Begin(req.Generation) {
		t.Fatal("Begin() = false for the current generation")
	}
	if got := c.State().Status; got != StatusLoading {
		t.Errorf("Status = %v after Begin, want loading", got)
	}
}

func TestDiscreteControlsFireImmediately(t *testing.T) {
	c := NewController(0)

	req, ok := c.SetGenre("878")
	if !ok || req.Delay != 0 {
		t.Fatalf("SetGenre() = %+v, %v; want immediate request", req, ok)
	}
	if c.State().Status != StatusLoading {
		t.Errorf("Status = %v, want loading", c.State().Status)
	}

	req, ok = c.SetMinRating(6)
	if !ok || req.Delay != 0 {
		t.Fatalf("SetMinRating() = %+v, %v; want immediate request", req, ok)
	}
	want := provider.Criteria{Genre: "878", MinRating: 6}
	if diff := cmp.Diff(want, req.Criteria); diff != "" {
		t.Errorf("criteria mismatch (-want +got):\n%s", diff)
	}
	if req.Generation != 2 {
		t.Errorf("Generation = %d, want 2", req.Generation)
	}

	if _, ok := c.SetMinRating(6); ok {
		t.Error("SetMinRating() with an unchanged value returned a request")
	}
	if req, _ := c.SetMinRating(-1); req.Criteria.MinRating != 0 {
		t.Errorf("negative rating stored as %v, want 0", req.Criteria.MinRating)
	}
}

func TestStaleDebounceDoesNotBegin(t *testing.T) {
	c := NewController(0)

	first, _ := c.SetQuery("ali")
	second, _ := c.SetQuery("alien")

	if c.Begin(first.Generation) {
		t.Error("Begin() accepted a superseded generation")
	}
	if !c.Begin(second.Generation) {
		t.Error("Begin() rejected the current generation")
	}
}

func TestLateResponseFromSupersededGenerationIsDropped(t *testing.T) {
	c := NewController(0)

	g1, _ := c.SetQuery("ali")
	c.Begin(g1.Generation)
	g2, _ := c.SetQuery("alien")
	c.Begin(g2.Generation)

	if !c.Resolve(g2.Generation, page("Alien", "Aliens"), nil) {
		t.Fatal("Resolve() rejected the current generation")
	}
	if c.Resolve(g1.Generation, page("Ali", "Alice"), nil) {
		t.Fatal("Resolve() applied a superseded generation")
	}

	got := c.State()
	if got.Status != StatusLoaded {
		t.Errorf("Status = %v, want loaded", got.Status)
	}
	if diff := cmp.Diff([]string{"Alien", "Aliens"}, titles(got.Results)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveErrorClearsResults(t *testing.T) {
	c := NewController(0)

	req := c.Refresh()
	c.Resolve(req.Generation, page("Heat"), nil)

	req, _ = c.SetGenre("28")
	err := &provider.ProviderError{Provider: "tmdb", Code: provider.CodeAuthFailed, Message: "Invalid API key: You must be granted a valid key."}
	c.Resolve(req.Generation, provider.Page{}, err)

	got := c.State()
	if got.Status != StatusErrored {
		t.Errorf("Status = %v, want errored", got.Status)
	}
	if got.Err != "Invalid API key: You must be granted a valid key." {
		t.Errorf("Err = %q", got.Err)
	}
	if got.Results == nil || len(got.Results) != 0 {
		t.Errorf("Results = %#v, want empty non-nil", got.Results)
	}

	req = c.Refresh()
	c.Resolve(req.Generation, page("Heat"), nil)
	if got := c.State(); got.Err != "" || got.Status != StatusLoaded {
		t.Errorf("after recovery Err = %q Status = %v", got.Err, got.Status)
	}
}

func TestStateIsACopy(t *testing.T) {
	c := NewController(0)
	req := c.Refresh()
	c.Resolve(req.Generation, page("Heat"), nil)

	snapshot := c.State()
	snapshot.Results[0].Title = "changed"

	if got := c.State().Results[0].Title; got != "Heat" {
		t.Errorf("controller state mutated through snapshot: %q", got)
	}
}

func TestTrailerTransitions(t *testing.T) {
	movie := provider.Movie{ID: "27205", Title: "Inception", Source: provider.SourceTMDB}

	tests := []struct {
		name       string
		trailer    *provider.Trailer
		err        error
		wantVideo  string
		wantNotice string
	}{
		{
			name:      "found",
			trailer:   &provider.Trailer{VideoID: "YoHD9XEInc0", Source: provider.SourceTMDB},
			wantVideo: "YoHD9XEInc0",
		},
		{
			name:       "nothing found",
			wantNotice: NoTrailerNotice,
		},
		{
			name:       "lookup failed",
			err:        errors.New("quota exceeded"),
			wantNotice: TrailerFailedNotice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(0)
			req := c.Refresh()
			c.Resolve(req.Generation, page("Inception"), nil)

			token := c.RequestTrailer(movie)
			if st := c.State(); !st.LoadingTrailer || st.TrailerFor != "Inception" {
				t.Fatalf("after RequestTrailer state = %+v", st)
			}
			if !c.ResolveTrailer(token, tt.trailer, tt.err) {
				t.Fatal("ResolveTrailer() rejected the current token")
			}

			st := c.State()
			if st.LoadingTrailer {
				t.Error("LoadingTrailer still set")
			}
			if st.ActiveVideoID != tt.wantVideo {
				t.Errorf("ActiveVideoID = %q, want %q", st.ActiveVideoID, tt.wantVideo)
			}
			if st.TrailerNotice != tt.wantNotice {
				t.Errorf("TrailerNotice = %q, want %q", st.TrailerNotice, tt.wantNotice)
			}
			if st.Status != StatusLoaded || len(st.Results) != 1 {
				t.Errorf("search state disturbed: %v %v", st.Status, titles(st.Results))
			}
		})
	}
}

func TestStaleTrailerDoesNotOverrideNewer(t *testing.T) {
	c := NewController(0)

	first := c.RequestTrailer(provider.Movie{Title: "Alien"})
	second := c.RequestTrailer(provider.Movie{Title: "Aliens"})

	if !c.ResolveTrailer(second, &provider.Trailer{VideoID: "aliens"}, nil) {
		t.Fatal("ResolveTrailer() rejected the latest token")
	}
	if c.ResolveTrailer(first, &provider.Trailer{VideoID: "alien"}, nil) {
		t.Fatal("ResolveTrailer() applied a superseded token")
	}
	if got := c.State().ActiveVideoID; got != "aliens" {
		t.Errorf("ActiveVideoID = %q, want aliens", got)
	}
}

func TestNewTrailerLookupDismissesPrevious(t *testing.T) {
	tests := []struct {
		name    string
		trailer *provider.Trailer
		err     error
	}{
		{name: "nothing found"},
		{name: "lookup failed", err: errors.New("quota exceeded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(0)
			first := c.RequestTrailer(provider.Movie{Title: "Alien"})
			c.ResolveTrailer(first, &provider.Trailer{VideoID: "vidA"}, nil)

			second := c.RequestTrailer(provider.Movie{Title: "Heat"})
			st := c.State()
			if st.ActiveVideoID != "" || st.ActiveTrailer != nil {
				t.Fatalf("previous trailer still active while loading: %q", st.ActiveVideoID)
			}

			c.ResolveTrailer(second, tt.trailer, tt.err)
			st = c.State()
			if st.TrailerFor != "Heat" || st.ActiveVideoID != "" || st.ActiveTrailer != nil {
				t.Errorf("state = for %q, id %q, trailer %v; want Heat with no active trailer",
					st.TrailerFor, st.ActiveVideoID, st.ActiveTrailer)
			}
		})
	}
}

func TestCloseTrailerDropsPendingLookup(t *testing.T) {
	c := NewController(0)

	token := c.RequestTrailer(provider.Movie{Title: "Heat"})
	c.CloseTrailer()

	if c.ResolveTrailer(token, &provider.Trailer{VideoID: "heat"}, nil) {
		t.Error("ResolveTrailer() applied a lookup made before CloseTrailer")
	}
	st := c.State()
	if st.LoadingTrailer || st.ActiveVideoID != "" || st.ActiveTrailer != nil {
		t.Errorf("state after close = %+v", st)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusIdle:    "idle",
		StatusLoading: "loading",
		StatusLoaded:  "loaded",
		StatusErrored: "errored",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(status), got, want)
		}
	}
}
