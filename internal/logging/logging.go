// Package logging builds the zerolog logger shared by the pipeline and CLI.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config contains logger options.
type Config struct {
	// Level is the minimum level (trace, debug, info, warn, error, fatal, panic).
	Level string `yaml:"level" json:"level"`

	// Format is console or json.
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig logs info and above in console format.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatConsole}
}

// New returns a logger writing to w, or to stderr when w is nil.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if !strings.EqualFold(cfg.Format, FormatJSON) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info
// for empty or unknown names. "warning" is accepted for warn.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(normalizeLevel(level))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// ValidLevel reports whether level names a known level. Empty is valid.
func ValidLevel(level string) bool {
	_, err := zerolog.ParseLevel(normalizeLevel(level))
	return err == nil
}

func normalizeLevel(level string) string {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return "warn"
	}
	return level
}
