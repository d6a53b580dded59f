package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default logging configuration constants
const (
	DefaultLevel      = "info"
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes where launcher diagnostics go. Console records always go
// to the writer passed to New; File adds a rotated JSON log.
// Rotation parameters follow lumberjack semantics.
type Config struct {
	Level      string `mapstructure:"level" toml:"level"`               // debug, info, warn, error
	File       string `mapstructure:"file" toml:"file"`                 // optional log file path
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb"`   // megabytes before rotation (default 10)
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"`   // number of backups to keep (default 3)
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days"` // days to keep (default 7)
	Compress   bool   `mapstructure:"compress" toml:"compress"`         // Gzip rotated files
}

// ParseLevel converts a level name to slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// FileWriter returns a rotating writer for c.File, or nil when no file is configured.
func (c Config) FileWriter() io.WriteCloser {
	if c.File == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   filepath.Clean(c.File),
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

// New builds the launcher logger. Records at or above the configured level go
// to console, colored when console is a terminal, and to the log file when set.
// The returned closer releases the log file and is never nil.
func New(c Config, console io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if isTerminal(console) {
		handlers = append(handlers, NewColorTextHandler(console, opts, false))
	} else {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}

	var closer io.Closer = nopCloser{}
	if fw := c.FileWriter(); fw != nil {
		if dir := filepath.Dir(c.File); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, closer, fmt.Errorf("create log dir: %w", err)
			}
		}
		handlers = append(handlers, slog.NewJSONHandler(fw, opts))
		closer = fw
	}
	return slog.New(fanout(handlers...)), closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
