package cmd

import (
	"fmt"
	"os"

	"github.com/vivekv1504/movie-search/internal/config"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	var pathOnly, initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration after the config file, environment variables and
flags are applied. API keys are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := global.configPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			out := cmd.OutOrStdout()
			if pathOnly {
				_, err := fmt.Fprintln(out, path)
				return err
			}
			if initFile {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists: %s", path)
				}
				if err := config.DefaultConfig().Save(path); err != nil {
					return err
				}
				_, err := fmt.Fprintf(out, "Wrote %s\n", path)
				return err
			}

			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "# %s\n", path); err != nil {
				return err
			}
			return toml.NewEncoder(out).Encode(cfg.Masked())
		},
	}

	cmd.Flags().BoolVar(&pathOnly, "path", false, "Print only the config file location")
	cmd.Flags().BoolVar(&initFile, "init", false, "Write a default config file if none exists")
	return cmd
}
