package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level   string
	LogFile string
	Color   string // auto, always or never
	Console io.Writer
}

var stderr = newProgressSafeWriter(os.Stderr)

// Stderr returns the shared terminal writer. Progress bars and console
// logs must both go through it so log lines do not land in the middle of
// a bar.
func Stderr() io.Writer {
	return stderr
}

// NewLogger creates a zerolog logger writing to the console and, when
// LogFile is set, to a rotating log file
func NewLogger(cfg Config) *zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	console := cfg.Console
	if console == nil {
		console = stderr
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: "15:04:05",
			NoColor:    noColor(cfg.Color),
		},
	}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    5, // MB
				MaxBackups: 2,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &logger
}

// NewTestLogger creates a logger for testing that writes to w
func NewTestLogger(w io.Writer) *zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &logger
}

func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

func noColor(mode string) bool {
	switch mode {
	case "always":
		return false
	case "never":
		return true
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return true
	}
	return !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// progressSafeWriter serializes terminal writes and clears a pending
// progress bar line before a log line is printed over it
type progressSafeWriter struct {
	mu      sync.Mutex
	out     io.Writer
	pending bool // last write did not end the line
}

func newProgressSafeWriter(out io.Writer) *progressSafeWriter {
	return &progressSafeWriter{out: out}
}

func (w *progressSafeWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}

	if w.pending && p[0] != '\r' {
		if _, err := io.WriteString(w.out, "\r\x1b[2K"); err != nil {
			return 0, err
		}
	}

	n, err := w.out.Write(p)
	w.pending = !bytes.HasSuffix(p[:n], []byte("\n"))
	return n, err
}
