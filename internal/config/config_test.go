package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// isolate points every lookup at an empty temp home
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	for _, key := range []string{EnvTMDBAPIKey, EnvOMDBAPIKey, EnvYouTubeAPIKey, EnvDemo} {
		t.Setenv(key, "")
		t.Setenv(legacyPrefix+key, "")
	}
	for _, key := range []string{"MOVIE_SEARCH_ADDR", "MOVIE_SEARCH_LOG_LEVEL", "MOVIE_SEARCH_TIMEOUT", "MOVIE_SEARCH_TRACE_EXPORTER"} {
		t.Setenv(key, "")
	}
	return home
}

func TestConfigPath(t *testing.T) {
	home := isolate(t)

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if want := filepath.Join(home, ".config", "movie-search", "config.toml"); path != want {
		t.Errorf("ConfigPath() = %q, want %q", path, want)
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	path, _ = ConfigPath()
	if want := filepath.Join(xdg, "movie-search", "config.toml"); path != want {
		t.Errorf("ConfigPath() with XDG = %q, want %q", path, want)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
tmdb_api_key = "file-tmdb"
omdb_api_key = "file-omdb"
language = "fr-FR"
request_timeout = "5s"
debounce = "250ms"
log_level = "debug"
demo = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultConfig()
	want.TMDBAPIKey = "file-tmdb"
	want.OMDBAPIKey = "file-omdb"
	want.Language = "fr-FR"
	want.RequestTimeout = 5 * time.Second
	want.Debounce = 250 * time.Millisecond
	want.LogLevel = "debug"
	want.Demo = true

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`tmdb_api_key = "file-tmdb"`+"\n"+`demo = true`+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvTMDBAPIKey, "env-tmdb")
	t.Setenv(legacyPrefix+EnvOMDBAPIKey, "legacy-omdb")
	t.Setenv(EnvYouTubeAPIKey, " yt-key ")
	t.Setenv(EnvDemo, "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := []any{cfg.TMDBAPIKey, cfg.OMDBAPIKey, cfg.YouTubeAPIKey, cfg.Demo}
	want := []any{"env-tmdb", "legacy-omdb", "yt-key", false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("env overlay mismatch (-want +got):\n%s", diff)
	}
}

func TestPrimarySpellingWinsOverLegacy(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTMDBAPIKey, "primary")
	t.Setenv(legacyPrefix+EnvTMDBAPIKey, "legacy")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TMDBAPIKey != "primary" {
		t.Errorf("TMDBAPIKey = %q, want primary", cfg.TMDBAPIKey)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "malformed toml",
			file:    "language = ",
			wantErr: "failed to parse config file",
		},
		{
			name:    "bad demo flag",
			env:     map[string]string{EnvDemo: "sometimes"},
			wantErr: "error parsing MOVIE_SEARCH_DEMO",
		},
		{
			name:    "bad timeout",
			env:     map[string]string{"MOVIE_SEARCH_TIMEOUT": "soon"},
			wantErr: "error parsing MOVIE_SEARCH_TIMEOUT",
		},
		{
			name:    "unknown log level",
			file:    `log_level = "loud"`,
			wantErr: `unsupported log level "loud"`,
		},
		{
			name:    "negative cache ttl",
			file:    `cache_ttl = "-1m"`,
			wantErr: "durations cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.toml")
			if tt.file != "" {
				if err := os.WriteFile(path, []byte(tt.file), 0600); err != nil {
					t.Fatal(err)
				}
			}

			_, err := Load(path)
			if err == nil {
				t.Fatalf("Load() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"json logs", func(c *Config) { c.LogFormat = "json" }, true},
		{"xml logs", func(c *Config) { c.LogFormat = "xml" }, false},
		{"upper case level", func(c *Config) { c.LogLevel = "WARN" }, true},
		{"negative burst", func(c *Config) { c.TMDBBurst = -1 }, false},
		{"negative retention", func(c *Config) { c.LogRetentionDays = -3 }, false},
		{"otlp exporter", func(c *Config) { c.TraceExporter = "otlp" }, true},
		{"zipkin exporter", func(c *Config) { c.TraceExporter = "zipkin" }, false},
		{"ascii icons", func(c *Config) { c.Icons = "ASCII" }, true},
		{"nerd font icons", func(c *Config) { c.Icons = "nerd" }, false},
		{"hex accent", func(c *Config) { c.AccentColor = "#33aa77" }, true},
		{"ansi accent", func(c *Config) { c.AccentColor = "212" }, true},
		{"named accent", func(c *Config) { c.AccentColor = "teal" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() error = %v, want ok = %v", err, tt.ok)
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.OMDBAPIKey = "saved-omdb"
	cfg.CacheTTL = 30 * time.Minute
	if err := cfg.Save(""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"abc":              "***",
		"abcd":             "****",
		"0123456789abcdef": "************cdef",
	}
	for in, want := range tests {
		if got := MaskKey(in); got != want {
			t.Errorf("MaskKey(%q) = %q, want %q", in, got, want)
		}
	}

	cfg := DefaultConfig()
	cfg.TMDBAPIKey = "secret-tmdb-key"
	masked := cfg.Masked()
	if masked.TMDBAPIKey != "***********-key" {
		t.Errorf("Masked().TMDBAPIKey = %q", masked.TMDBAPIKey)
	}
	if cfg.TMDBAPIKey != "secret-tmdb-key" {
		t.Error("Masked() modified the original")
	}
}
