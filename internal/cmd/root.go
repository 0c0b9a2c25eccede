/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vivekv1504/movie-search/internal/config"
	"github.com/vivekv1504/movie-search/internal/log"
	"github.com/vivekv1504/movie-search/internal/player"
	"github.com/vivekv1504/movie-search/internal/tui"
	"github.com/vivekv1504/movie-search/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when the interactive browser is started without a terminal
var ErrNoTerminal = errors.New("movie-search needs an interactive terminal; try 'movie-search search <query>' instead")

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	demo       bool
	logLevel   string
	configPath string
}

// isTerminal is swapped in tests
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "movie-search",
		Short: "Search movies and watch their trailers",
		Long: `movie-search finds movies through TMDB, falls back to OMDB for title searches,
and serves a built-in sample dataset when no API key is configured.

Run without a subcommand to open the interactive browser. Trailers come from
TMDB's video listing first, then a YouTube search.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&opts.demo, "demo", false, "Use the built-in sample dataset even when API keys are set")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/movie-search/config.toml)")

	rootCmd.AddCommand(
		newSearchCmd(opts),
		newGenresCmd(opts),
		newTrailerCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runBrowser(cmd *cobra.Command, opts *globalOptions) error {
	if !isTerminal() {
		return ErrNoTerminal
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	// the terminal belongs to the UI, so logs go to a file
	logOpts := log.Options{
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		ToFile:        cfg.EnableLogging,
		RetentionDays: cfg.LogRetentionDays,
	}
	if !cfg.EnableLogging {
		logOpts.Writer = io.Discard
	}
	logger, closer, err := log.Setup(logOpts)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	ctx := cmd.Context()
	providers, agg, err := buildAggregator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("starting browser", "demo", providers.Demo, "sources", providers.Registry.List())

	th := theme.New(
		theme.WithIcons(theme.Icons(strings.ToLower(cfg.Icons))),
		theme.WithAccent(cfg.AccentColor),
	)
	model := tui.New(tui.Options{
		Context:  ctx,
		Searcher: agg,
		Player:   player.New(cfg.Player),
		Debounce: cfg.Debounce,
		Logger:   logger,
		Theme:    &th,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

// loadConfig reads the config file and environment, then applies flags
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("demo") {
		cfg.Demo = opts.demo
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	return cfg, nil
}
