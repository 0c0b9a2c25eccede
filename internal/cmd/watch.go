package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vivekv1504/movie-search/internal/search"

	"github.com/spf13/cobra"
)

func newWatchCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Search line by line from standard input",
		Long: `Read queries from standard input and print results as they settle. Lines are
debounced like keystrokes in the browser, so a burst of input only searches for
the last line.

Commands:
  :genre <id>     filter by genre id (empty for all)
  :rating <n>     minimum rating from 0 to 10
  :trailer <n>    look up the trailer of result n
  :close          dismiss the trailer
  :quit           stop reading`,
		Example: `  printf 'space\n:trailer 1\n' | movie-search watch --demo`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, global)
		},
	}
}

func runWatch(cmd *cobra.Command, global *globalOptions) error {
	cfg, logger, agg, err := setup(cmd, global)
	if err != nil {
		return err
	}

	session := search.NewSession(cmd.Context(), agg, cfg.Debounce, logger)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printStates(cmd.OutOrStdout(), session.Updates())
	}()
	session.Start()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if quit := applyLine(session, scanner.Text(), cmd.ErrOrStderr()); quit {
			break
		}
	}

	session.Settle()
	session.Close()
	<-printed
	return scanner.Err()
}

// applyLine feeds one input line to the session and reports whether to stop
func applyLine(s *search.Session, line string, errOut io.Writer) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		s.SetQuery(line)
		return false
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "quit", "q":
		return true
	case "genre":
		s.SetGenre(arg)
	case "rating":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v < 0 || v > 10 {
			fmt.Fprintf(errOut, "invalid rating %q\n", arg)
			return false
		}
		s.SetMinRating(v)
	case "trailer":
		// pick from the results of the latest input, not an earlier page
		s.Settle()
		results := s.State().Results
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(results) {
			fmt.Fprintf(errOut, "no result %q\n", arg)
			return false
		}
		s.RequestTrailer(results[n-1])
	case "close":
		s.CloseTrailer()
	default:
		fmt.Fprintf(errOut, "unknown command :%s\n", name)
	}
	return false
}

// printStates writes each settled generation once, plus trailer outcomes
func printStates(w io.Writer, updates <-chan search.State) {
	var lastGen uint64
	var lastTrailer string
	for st := range updates {
		if (st.Status == search.StatusLoaded || st.Status == search.StatusErrored) && st.Generation != lastGen {
			lastGen = st.Generation
			writeSettled(w, st)
		}
		if key := trailerKey(st); key != lastTrailer {
			lastTrailer = key
			if key != "" {
				writeTrailerOutcome(w, st)
			}
		}
	}
}

func writeSettled(w io.Writer, st search.State) {
	fmt.Fprintf(w, "> %s\n", describeCriteria(st))
	switch {
	case st.Status == search.StatusErrored:
		fmt.Fprintf(w, "Error: %s\n", st.Err)
	case len(st.Results) == 0:
		fmt.Fprintln(w, "No movies found.")
	default:
		for i, m := range st.Results {
			fmt.Fprintf(w, "%3d. %s (%s) %s\n", i+1, m.Title, orDash(m.Year), formatRating(m.Rating))
		}
		fmt.Fprintf(w, "Showing %d of %d results\n", len(st.Results), st.TotalResults)
	}
}

func describeCriteria(st search.State) string {
	c := st.Criteria
	desc := "popular"
	if c.Query != "" {
		desc = strconv.Quote(c.Query)
	}
	if c.Genre != "" {
		desc += " genre=" + c.Genre
	}
	if c.MinRating > 0 {
		desc += " rating>=" + strconv.FormatFloat(c.MinRating, 'f', -1, 64)
	}
	return desc
}

func trailerKey(st search.State) string {
	if st.LoadingTrailer || st.TrailerFor == "" {
		return ""
	}
	return st.TrailerFor + "|" + st.ActiveVideoID + "|" + st.TrailerNotice
}

func writeTrailerOutcome(w io.Writer, st search.State) {
	switch {
	case st.TrailerErr != "":
		fmt.Fprintf(w, "%s: %s (%s)\n", st.TrailerFor, st.TrailerNotice, st.TrailerErr)
	case st.TrailerNotice != "":
		fmt.Fprintf(w, "%s: %s\n", st.TrailerFor, st.TrailerNotice)
	case st.ActiveTrailer != nil:
		fmt.Fprintf(w, "Trailer for %s: %s\n", st.TrailerFor, st.ActiveTrailer.URL())
	}
}
