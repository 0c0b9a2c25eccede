package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logExt = ".log"

// Options configures Setup
type Options struct {
	Level  string
	Format string // "text" or "json"

	// ToFile sends output to a fresh file under LogDir instead of Writer.
	// The TUI owns the terminal, so it logs this way.
	ToFile        bool
	RetentionDays int

	Writer io.Writer // defaults to stderr
}

// ParseLevel maps a level name to its slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup builds the process logger, installs it as the slog default and
// returns a closer for any file it opened.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	var closer io.Closer = nopCloser{}

	if opts.ToFile {
		if err := CleanupOldLogs(opts.RetentionDays); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to clean up old logs: %v\n", err)
		}
		f, err := OpenSessionFile()
		if err != nil {
			return nil, nil, err
		}
		w = f
		closer = f
	}

	logger := New(w, opts.Level, opts.Format)
	slog.SetDefault(logger)
	return logger, closer, nil
}

// LogDir returns the directory session log files are written to
func LogDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "movie-search", "logs"), nil
}

// OpenSessionFile creates a new timestamped log file in LogDir
func OpenSessionFile() (*os.File, error) {
	logDir, err := LogDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s.%03d%s",
		now.Format("2006-01-02_150405"),
		now.Nanosecond()/1000000,
		logExt)

	f, err := os.OpenFile(filepath.Join(logDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// CleanupOldLogs removes log files older than retentionDays. A non-positive
// retention keeps everything.
func CleanupOldLogs(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	logDir, err := LogDir()
	if err != nil {
		return err
	}

	// Check if log directory exists
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(logDir, "*"+logExt))
	if err != nil {
		return fmt.Errorf("failed to list log files: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to remove old log file %s: %v\n", file, err)
			}
		}
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
