package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "movie-search"

// Credential and mode environment variables. Each also accepts a
// REACT_APP_-prefixed spelling.
const (
	EnvTMDBAPIKey    = "TMDB_API_KEY"
	EnvOMDBAPIKey    = "OMDB_API_KEY"
	EnvYouTubeAPIKey = "YOUTUBE_API_KEY"
	EnvDemo          = "MOVIE_SEARCH_DEMO"

	legacyPrefix = "REACT_APP_"
)

// accentRe accepts the color forms lipgloss understands
var accentRe = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|#[0-9a-fA-F]{3}|[0-9]{1,3})$`)

// Config holds every setting the application reads
type Config struct {
	TMDBAPIKey    string `toml:"tmdb_api_key"`
	OMDBAPIKey    string `toml:"omdb_api_key"`
	YouTubeAPIKey string `toml:"youtube_api_key"`
	Demo          bool   `toml:"demo"`

	Language       string        `toml:"language"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	CacheTTL       time.Duration `toml:"cache_ttl"`
	TMDBRateLimit  float64       `toml:"tmdb_rate_limit"`
	TMDBBurst      int           `toml:"tmdb_burst"`
	Debounce       time.Duration `toml:"debounce"`

	HTTPAddr      string  `toml:"http_addr"`
	HTTPRateLimit float64 `toml:"http_rate_limit"`
	HTTPBurst     int     `toml:"http_burst"`

	Player      string `toml:"player"`
	Icons       string `toml:"icons"`
	AccentColor string `toml:"accent_color"`

	LogLevel         string `toml:"log_level"`
	LogFormat        string `toml:"log_format"`
	EnableLogging    bool   `toml:"enable_logging"`
	LogRetentionDays int    `toml:"log_retention_days"`
	TraceExporter    string `toml:"trace_exporter"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Language:         "en-US",
		RequestTimeout:   10 * time.Second,
		CacheTTL:         time.Hour,
		TMDBRateLimit:    4,
		TMDBBurst:        5,
		Debounce:         400 * time.Millisecond,
		HTTPAddr:         ":8080",
		HTTPRateLimit:    10,
		HTTPBurst:        20,
		Player:           "browser",
		Icons:            "auto",
		LogLevel:         "info",
		LogFormat:        "text",
		EnableLogging:    true,
		LogRetentionDays: 30,
	}
}

// configDir returns the XDG config directory for the application
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path (the default location when empty),
// overlays the environment and validates the result. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv lets the environment override file values
func (cfg *Config) applyEnv() error {
	if v := lookupEnv(EnvTMDBAPIKey); v != "" {
		cfg.TMDBAPIKey = v
	}
	if v := lookupEnv(EnvOMDBAPIKey); v != "" {
		cfg.OMDBAPIKey = v
	}
	if v := lookupEnv(EnvYouTubeAPIKey); v != "" {
		cfg.YouTubeAPIKey = v
	}

	demo, err := getEnvBoolDefault(EnvDemo, cfg.Demo)
	if err != nil {
		return err
	}
	cfg.Demo = demo

	if cfg.HTTPAddr, err = getEnvStringDefault("MOVIE_SEARCH_ADDR", cfg.HTTPAddr); err != nil {
		return err
	}
	if cfg.LogLevel, err = getEnvStringDefault("MOVIE_SEARCH_LOG_LEVEL", cfg.LogLevel); err != nil {
		return err
	}
	if cfg.RequestTimeout, err = getEnvTimeDefault("MOVIE_SEARCH_TIMEOUT", cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.TraceExporter, err = getEnvStringDefault("MOVIE_SEARCH_TRACE_EXPORTER", cfg.TraceExporter); err != nil {
		return err
	}
	return nil
}

// Validate checks values are within acceptable bounds
func (cfg *Config) Validate() error {
	if cfg.RequestTimeout < 0 || cfg.CacheTTL < 0 || cfg.Debounce < 0 {
		return fmt.Errorf("durations cannot be negative")
	}
	if cfg.TMDBRateLimit < 0 || cfg.TMDBBurst < 0 || cfg.HTTPRateLimit < 0 || cfg.HTTPBurst < 0 {
		return fmt.Errorf("rate limits cannot be negative")
	}
	if cfg.LogRetentionDays < 0 {
		return fmt.Errorf("log retention cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.LogLevel)] {
		return fmt.Errorf("unsupported log level %q (valid: debug, info, warn, error)", cfg.LogLevel)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(cfg.LogFormat)] {
		return fmt.Errorf("unsupported log format %q (valid: text, json)", cfg.LogFormat)
	}
	validIcons := map[string]bool{"": true, "auto": true, "emoji": true, "ascii": true}
	if !validIcons[strings.ToLower(cfg.Icons)] {
		return fmt.Errorf("unsupported icons %q (valid: auto, emoji, ascii)", cfg.Icons)
	}
	if c := strings.TrimSpace(cfg.AccentColor); c != "" && !accentRe.MatchString(c) {
		return fmt.Errorf("accent_color %q is not a #rrggbb color or ANSI number", cfg.AccentColor)
	}
	validExporters := map[string]bool{"": true, "none": true, "stdout": true, "otlp": true}
	if !validExporters[strings.ToLower(cfg.TraceExporter)] {
		return fmt.Errorf("unsupported trace exporter %q (valid: none, stdout, otlp)", cfg.TraceExporter)
	}
	return nil
}

// Save writes the configuration as TOML to path (the default location when
// empty).
func (cfg *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Masked returns a copy with credentials obscured for display
func (cfg *Config) Masked() *Config {
	out := *cfg
	out.TMDBAPIKey = MaskKey(cfg.TMDBAPIKey)
	out.OMDBAPIKey = MaskKey(cfg.OMDBAPIKey)
	out.YouTubeAPIKey = MaskKey(cfg.YouTubeAPIKey)
	return &out
}

// MaskKey keeps the last four characters of a credential
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// lookupEnv reads key, falling back to its REACT_APP_ spelling
func lookupEnv(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(legacyPrefix + key))
}

func getEnvStringDefault(key, defaultValue string) (string, error) {
	result := lookupEnv(key)
	if result == "" {
		result = defaultValue
	}
	return result, nil
}

func getEnvTimeDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	result := lookupEnv(key)
	if result == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(result)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return duration, nil
}

func getEnvBoolDefault(key string, defaultValue bool) (bool, error) {
	result := lookupEnv(key)
	if result == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(result)
	if err != nil {
		return false, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return value, nil
}
