// Package logging configures the global slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Resolve turns flag values into a format and level. An empty level means
// debug when running interactively and info otherwise.
func Resolve(interactive bool, format, level string) (Format, slog.Level) {
	if level == "" {
		if interactive {
			return ParseFormat(format), slog.LevelDebug
		}
		return ParseFormat(format), slog.LevelInfo
	}
	return ParseFormat(format), ParseLevel(level)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// New builds a logger writing to w: colored text on a terminal or when
// asked for, JSON otherwise. attrs are attached to every record.
func New(w io.Writer, format Format, level slog.Level, attrs ...any) *slog.Logger {
	useTint := format == FormatText || (format == FormatAuto && IsTTY(w))

	var h slog.Handler
	if useTint {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(h).With(attrs...)
}

// Setup installs a stderr logger as the slog default. Call once after
// flag/viper parsing.
func Setup(format Format, level slog.Level, attrs ...any) {
	slog.SetDefault(New(os.Stderr, format, level, attrs...))
}
