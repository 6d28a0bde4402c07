package utils

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Stem returns the file name without its final extension, so
// "2024-01-05 18-22-31.mkv" becomes "2024-01-05 18-22-31".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EnsureDir creates the directory and any missing parents. Unlike a scratch
// output dir, the converted directory may already hold earlier runs, so it is
// never cleared.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// Getenv returns the environment value for key, or def when unset.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseLevel maps a LOG_LEVEL string onto a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LineWriter turns stream output into per-line log records at a given level.
// It is used to fold ffmpeg's stderr chatter into the structured log.
type LineWriter struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Pipe reads r to EOF, emitting one record per line.
func (lw *LineWriter) Pipe(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lw.Logger.Log(context.Background(), lw.Level, sc.Text())
	}
}
