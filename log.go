package framevk

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LogConfig selects the log level and an optional log file that receives the
// same records as stderr.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(strings.ToUpper(name)))
	return level, errors.Wrapf(err, "log level %q", name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the renderer's text logger. The returned closer releases
// the log file, if any.
func NewLogger(cfg LogConfig) (*slog.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open log file")
		}
		out = io.MultiWriter(os.Stderr, f)
		closer = f
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closer, nil
}

//Logger that drops everything, for tests and library callers that bring none
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
