package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vivekv1504/movie-search/internal/provider"
	"github.com/vivekv1504/movie-search/internal/search"

	"github.com/spf13/cobra"
)

// trailingYearRe matches a title ending in a bracketed year such as
// "Heat (1995)". A bare trailing number is part of the title ("Blade Runner
// 2049").
var trailingYearRe = regexp.MustCompile(`^(.+?)[\s._-]*(?:\(((?:19|20)\d{2})\)|\[((?:19|20)\d{2})\])$`)

// splitTitleYear separates a trailing release year from a title
func splitTitleYear(title string) (string, string) {
	m := trailingYearRe.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return title, ""
	}
	return strings.TrimSpace(m[1]), m[2] + m[3]
}

func newTrailerCmd(global *globalOptions) *cobra.Command {
	var (
		year   string
		tmdbID int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "trailer <title>",
		Short: "Find a trailer for a movie",
		Long: `Find a trailer for a movie. With --tmdb-id the movie's TMDB video listing is
checked first; otherwise, or when it has nothing, YouTube is searched for the
title and year.`,
		Example: `  movie-search trailer "Inception" --year 2010
  movie-search trailer Inception --tmdb-id 27205`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title is required")
			}
			if tmdbID < 0 {
				return fmt.Errorf("--tmdb-id must be positive")
			}

			_, _, agg, err := setup(cmd, global)
			if err != nil {
				return err
			}

			movie := provider.Movie{Title: title, Year: strings.TrimSpace(year)}
			if movie.Year == "" {
				movie.Title, movie.Year = splitTitleYear(title)
			}
			if tmdbID > 0 {
				movie.ID = strconv.Itoa(tmdbID)
				movie.Source = provider.SourceTMDB
			}

			trailer, err := agg.FetchTrailer(cmd.Context(), movie)
			if err != nil {
				return fmt.Errorf("%s: %s", search.TrailerFailedNotice, provider.Message(err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				var body any
				if trailer != nil {
					body = trailerJSON{Trailer: *trailer, URL: trailer.URL()}
				}
				return writeJSON(out, map[string]any{"trailer": body})
			}
			if trailer == nil {
				_, err := fmt.Fprintln(out, search.NoTrailerNotice)
				return err
			}
			_, err = fmt.Fprintf(out, "%s\n%s\n", trailer.Title, trailer.URL())
			return err
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "Release year, improves the YouTube search")
	cmd.Flags().IntVar(&tmdbID, "tmdb-id", 0, "TMDB movie id, enables the video listing lookup")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the trailer as JSON")
	return cmd
}
