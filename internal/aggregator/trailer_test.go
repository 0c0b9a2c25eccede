package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vivekv1504/movie-search/internal/provider"
)

type fakeVideos struct {
	videos []provider.Video
	err    error
	ids    []int
}

func (f *fakeVideos) Videos(_ context.Context, id int) ([]provider.Video, error) {
	f.ids = append(f.ids, id)
	return f.videos, f.err
}

func (f *fakeVideos) Configured() bool { return true }

type fakeSearcher struct {
	results map[string][]provider.Video
	err     error
	queries []string
	limits  []int
}

func (f *fakeSearcher) Name() string { return "youtube" }

func (f *fakeSearcher) SearchVideos(_ context.Context, query string, limit int) ([]provider.Video, error) {
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeSearcher) Configured() bool { return true }

var inception = provider.Movie{ID: "27205", Title: "Inception", Year: "2010", Source: provider.SourceTMDB}

func TestFetchTrailerTeaserOnlyListingWinsStageOne(t *testing.T) {
	videos := &fakeVideos{videos: []provider.Video{
		{Key: "teaser1", Title: "Teaser", Site: "YouTube", Type: "Teaser"},
	}}
	search := &fakeSearcher{}
	agg := New(Config{Videos: videos, VideoSearch: search, Logger: discardLogger()})

	got, err := agg.FetchTrailer(context.Background(), inception)
	if err != nil {
		t.Fatalf("FetchTrailer() error = %v", err)
	}
	want := &provider.Trailer{VideoID: "teaser1", Title: "Teaser", Type: "Teaser", Source: provider.SourceTMDB}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchTrailer() mismatch (-want +got):\n%s", diff)
	}
	if len(search.queries) != 0 {
		t.Errorf("stage two ran with queries %v", search.queries)
	}
	if diff := cmp.Diff([]int{27205}, videos.ids); diff != "" {
		t.Errorf("listing ids mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTrailerEmptyListingFallsBackToSearch(t *testing.T) {
	videos := &fakeVideos{videos: []provider.Video{}}
	search := &fakeSearcher{results: map[string][]provider.Video{
		"Inception 2010 official trailer": {
			{Key: "bts", Title: "Making of Inception"},
			{Key: "yt1", Title: "INCEPTION - Official Trailer (HD)"},
			{Key: "yt2", Title: "Inception trailer 2"},
		},
	}}
	agg := New(Config{Videos: videos, VideoSearch: search, Logger: discardLogger()})

	got, err := agg.FetchTrailer(context.Background(), inception)
	if err != nil {
		t.Fatalf("FetchTrailer() error = %v", err)
	}
	want := &provider.Trailer{VideoID: "yt1", Title: "INCEPTION - Official Trailer (HD)", Source: provider.SourceYouTube}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchTrailer() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Inception 2010 official trailer"}, search.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3}, search.limits); diff != "" {
		t.Errorf("limits mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTrailerAllTemplatesEmptyIsNil(t *testing.T) {
	search := &fakeSearcher{results: map[string][]provider.Video{}}
	agg := New(Config{Videos: &fakeVideos{}, VideoSearch: search, Logger: discardLogger()})

	got, err := agg.FetchTrailer(context.Background(), inception)
	if err != nil {
		t.Fatalf("FetchTrailer() error = %v, want nil", err)
	}
	if got != nil {
		t.Fatalf("FetchTrailer() = %+v, want nil", got)
	}

	want := []string{
		"Inception 2010 official trailer",
		"Inception 2010 trailer",
		"Inception trailer",
		"Inception 2010 teaser",
	}
	if diff := cmp.Diff(want, search.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTrailerListingErrorIsNonFatal(t *testing.T) {
	videos := &fakeVideos{err: errors.New("tmdb down")}
	search := &fakeSearcher{results: map[string][]provider.Video{
		"Inception 2010 official trailer": {{Key: "first", Title: "Inception clip"}},
	}}
	agg := New(Config{Videos: videos, VideoSearch: search, Logger: discardLogger()})

	got, err := agg.FetchTrailer(context.Background(), inception)
	if err != nil {
		t.Fatalf("FetchTrailer() error = %v", err)
	}
	// no title matches a trailer word, so the first result is used
	if got == nil || got.VideoID != "first" {
		t.Fatalf("FetchTrailer() = %+v, want first result", got)
	}
}

func TestFetchTrailerSkipsListingForNonTMDBIds(t *testing.T) {
	tests := []provider.Movie{
		{ID: "tt0078748-0", Title: "Alien", Year: "1979", Source: provider.SourceOMDB},
		{ID: "sample-1", Title: "They call Him OG", Year: "2020", Source: provider.SourceSample},
		{ID: "-5", Title: "Broken", Source: provider.SourceTMDB},
		{ID: "abc", Title: "Broken", Source: provider.SourceTMDB},
	}

	for _, movie := range tests {
		t.Run(movie.ID, func(t *testing.T) {
			videos := &fakeVideos{videos: []provider.Video{{Key: "x", Site: "YouTube", Type: "Trailer"}}}
			search := &fakeSearcher{results: map[string][]provider.Video{}}
			agg := New(Config{Videos: videos, VideoSearch: search, Logger: discardLogger()})

			if _, err := agg.FetchTrailer(context.Background(), movie); err != nil {
				t.Fatalf("FetchTrailer() error = %v", err)
			}
			if len(videos.ids) != 0 {
				t.Errorf("listing called for %q", movie.ID)
			}
			if len(search.queries) == 0 {
				t.Error("stage two not attempted")
			}
		})
	}
}

func TestFetchTrailerSearchErrorPropagates(t *testing.T) {
	search := &fakeSearcher{err: errors.New("quota exceeded")}
	agg := New(Config{VideoSearch: search, Logger: discardLogger()})

	got, err := agg.FetchTrailer(context.Background(), provider.Movie{ID: "sample-2", Title: "Space Trails", Year: "2019", Source: provider.SourceSample})
	if err == nil {
		t.Fatal("FetchTrailer() error = nil, want error")
	}
	if got != nil {
		t.Errorf("FetchTrailer() = %+v, want nil on error", got)
	}
	var perr *provider.ProviderError
	if !errors.As(err, &perr) {
		t.Errorf("error = %T, want *provider.ProviderError", err)
	}
}

func TestFetchTrailerWithoutProvidersIsNil(t *testing.T) {
	agg := New(Config{Logger: discardLogger()})
	got, err := agg.FetchTrailer(context.Background(), inception)
	if err != nil || got != nil {
		t.Fatalf("FetchTrailer() = %+v, %v; want nil, nil", got, err)
	}
}

func TestFetchTrailerMemoises(t *testing.T) {
	videos := &fakeVideos{videos: []provider.Video{{Key: "t1", Site: "YouTube", Type: "Trailer"}}}
	agg := New(Config{Videos: videos, Logger: discardLogger()})

	for i := 0; i < 3; i++ {
		got, err := agg.FetchTrailer(context.Background(), inception)
		if err != nil || got == nil || got.VideoID != "t1" {
			t.Fatalf("FetchTrailer() #%d = %+v, %v", i, got, err)
		}
	}
	if len(videos.ids) != 1 {
		t.Errorf("listing calls = %d, want 1", len(videos.ids))
	}
}

func TestSelectListing(t *testing.T) {
	tests := []struct {
		name   string
		videos []provider.Video
		want   string
	}{
		{
			name: "trailer preferred over earlier teaser",
			videos: []provider.Video{
				{Key: "teaser", Site: "YouTube", Type: "Teaser"},
				{Key: "vimeo", Site: "Vimeo", Type: "Trailer"},
				{Key: "trailer", Site: "YouTube", Type: "Trailer"},
			},
			want: "trailer",
		},
		{
			name: "teaser before other youtube types",
			videos: []provider.Video{
				{Key: "clip", Site: "YouTube", Type: "Clip"},
				{Key: "teaser", Site: "YouTube", Type: "Teaser"},
			},
			want: "teaser",
		},
		{
			name: "any youtube video",
			videos: []provider.Video{
				{Key: "vimeo", Site: "Vimeo", Type: "Trailer"},
				{Key: "featurette", Site: "YouTube", Type: "Featurette"},
			},
			want: "featurette",
		},
		{
			name:   "no youtube video",
			videos: []provider.Video{{Key: "vimeo", Site: "Vimeo", Type: "Trailer"}},
			want:   "",
		},
		{
			name:   "empty listing",
			videos: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectListing(tt.videos)
			key := ""
			if got != nil {
				key = got.VideoID
			}
			if key != tt.want {
				t.Errorf("SelectListing() = %q, want %q", key, tt.want)
			}
		})
	}
}

func TestTrailerQueries(t *testing.T) {
	tests := []struct {
		title string
		year  string
		want  []string
	}{
		{
			title: "Heat",
			year:  "1995",
			want:  []string{"Heat 1995 official trailer", "Heat 1995 trailer", "Heat trailer", "Heat 1995 teaser"},
		},
		{
			title: "Heat",
			year:  "",
			want:  []string{"Heat official trailer", "Heat trailer", "Heat teaser"},
		},
		{
			title: "  ",
			year:  "1995",
			want:  nil,
		},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, TrailerQueries(tt.title, tt.year)); diff != "" {
			t.Errorf("TrailerQueries(%q, %q) mismatch (-want +got):\n%s", tt.title, tt.year, diff)
		}
	}
}
