package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vivekv1504/movie-search/internal/aggregator"
	"github.com/vivekv1504/movie-search/internal/provider"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// trailerConcurrency bounds parallel trailer lookups for --trailers
const trailerConcurrency = 4

type searchOptions struct {
	genre     string
	minRating float64
	page      int
	source    string
	trailers  bool
	json      bool
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search movies by title, or discover popular ones",
		Long: `Search movies by title. Without a query the most popular movies are listed,
filtered by --genre and --min-rating.

The source is picked automatically (TMDB, then OMDB for title searches, then the
sample dataset) unless --provider names one.`,
		Example: `  movie-search search inception
  movie-search search --genre 878 --min-rating 7
  movie-search search "space" --demo --trailers`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, global, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.genre, "genre", "", "Genre id to filter by (discovery only)")
	cmd.Flags().Float64Var(&opts.minRating, "min-rating", 0, "Minimum rating from 0 to 10 (discovery only)")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Result page")
	cmd.Flags().StringVar(&opts.source, "provider", "auto", "Movie source: auto, tmdb, omdb or sample")
	cmd.Flags().BoolVar(&opts.trailers, "trailers", false, "Look up a trailer for each result")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	return cmd
}

// searchResult is one row of output, optionally with its trailer
type searchResult struct {
	provider.Movie
	Trailer      *trailerJSON `json:"trailer,omitempty"`
	TrailerError string       `json:"trailer_error,omitempty"`
}

type trailerJSON struct {
	provider.Trailer
	URL string `json:"url"`
}

type searchOutput struct {
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	Page         int            `json:"page"`
}

func runSearch(cmd *cobra.Command, global *globalOptions, opts *searchOptions, args []string) error {
	if !(opts.minRating >= 0 && opts.minRating <= 10) {
		return fmt.Errorf("--min-rating must be between 0 and 10")
	}
	if opts.page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}
	source := strings.ToLower(strings.TrimSpace(opts.source))
	switch source {
	case "", "auto", string(provider.SourceTMDB), string(provider.SourceOMDB), string(provider.SourceSample):
	default:
		return fmt.Errorf("unknown provider %q (valid: auto, tmdb, omdb, sample)", opts.source)
	}

	_, logger, agg, err := setup(cmd, global)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	criteria := provider.Criteria{
		Query:     strings.TrimSpace(strings.Join(args, " ")),
		Genre:     strings.TrimSpace(opts.genre),
		MinRating: opts.minRating,
	}

	var page provider.Page
	if source == "" || source == "auto" {
		page, err = agg.SearchMovies(ctx, criteria, opts.page)
	} else {
		page, err = agg.SearchWith(ctx, source, criteria, opts.page)
	}
	if err != nil {
		return fmt.Errorf("search failed: %s", provider.Message(err))
	}
	logger.Debug("search complete", "query", criteria.Query, "results", len(page.Results))

	out := searchOutput{
		Results:      make([]searchResult, len(page.Results)),
		TotalResults: page.TotalResults,
		Page:         page.Page,
	}
	for i, movie := range page.Results {
		out.Results[i] = searchResult{Movie: movie}
	}
	if opts.trailers {
		if err := attachTrailers(ctx, agg, out.Results); err != nil {
			return err
		}
	}

	if opts.json {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	return writeSearchTable(cmd.OutOrStdout(), out, opts.trailers)
}

// attachTrailers looks trailers up concurrently. A failed lookup is recorded
// on its row and does not fail the others.
func attachTrailers(ctx context.Context, agg *aggregator.Aggregator, results []searchResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(trailerConcurrency)

	for i := range results {
		g.Go(func() error {
			trailer, err := agg.FetchTrailer(gctx, results[i].Movie)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i].TrailerError = provider.Message(err)
				return nil
			}
			if trailer != nil {
				results[i].Trailer = &trailerJSON{Trailer: *trailer, URL: trailer.URL()}
			}
			return nil
		})
	}
	return g.Wait()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSearchTable(w io.Writer, out searchOutput, withTrailers bool) error {
	if len(out.Results) == 0 {
		_, err := fmt.Fprintln(w, "No movies found.")
		return err
	}

	headers := []string{"TITLE", "YEAR", "RATING", "SOURCE"}
	if withTrailers {
		headers = append(headers, "TRAILER")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, r := range out.Results {
		row := []string{r.Title, orDash(r.Year), formatRating(r.Rating), string(r.Source)}
		if withTrailers {
			switch {
			case r.Trailer != nil:
				row = append(row, r.Trailer.URL)
			case r.TrailerError != "":
				row = append(row, "error: "+r.TrailerError)
			default:
				row = append(row, "-")
			}
		}
		t.Row(row...)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d results (page %d)\n", len(out.Results), out.TotalResults, out.Page)
	return err
}

func formatRating(v float64) string {
	if v <= 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
