package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newGenresCmd(global *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List the genres usable with search --genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, agg, err := setup(cmd, global)
			if err != nil {
				return err
			}

			genres := agg.FetchGenres(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"genres": genres})
			}
			if len(genres) == 0 {
				_, err := fmt.Fprintln(out, "No genres available. Set TMDB_API_KEY or use --demo.")
				return err
			}

			t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "NAME")
			for _, g := range genres {
				t.Row(g.ID, g.Name)
			}
			_, err = fmt.Fprintln(out, t.Render())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print genres as JSON")
	return cmd
}
