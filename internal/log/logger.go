// Package log configures the process-wide slog logger.
//
// The json and text formats use the slog handlers directly. The pattern format renders
// through logrus with a printf-like layout (see formatter).
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"firestige.xyz/wapdec/internal/config"
)

// DefaultPattern is used by the pattern format when none is configured.
const DefaultPattern = "%time [%level] %msg %field%n"

const timeLayout = "2006-01-02 15:04:05.000"

// Init initializes the global logger based on configuration. Logs go to stderr so that
// decoded output on stdout stays machine readable.
func Init(cfg config.LogConfig) error {
	writers := NewMultiWriter().Add(os.Stderr)
	if cfg.Outputs.File.Enabled {
		w, err := createFileWriter(cfg.Outputs.File)
		if err != nil {
			return fmt.Errorf("failed to create file output: %w", err)
		}
		writers.Add(w)
	}

	handler, err := NewHandler(cfg, writers)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// NewHandler builds the handler for cfg writing to w.
func NewHandler(cfg config.LogConfig, w io.Writer) (slog.Handler, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	case "text":
		return slog.NewTextHandler(w, opts), nil
	case "pattern":
		pattern := cfg.Pattern
		if pattern == "" {
			pattern = DefaultPattern
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetFormatter(&formatter{pattern: pattern, time: timeLayout})
		l.SetLevel(logrusLevel(level))
		return newLogrusHandler(l), nil
	}
	return nil, fmt.Errorf("unsupported log format: %s (must be json, text or pattern)", cfg.Format)
}

// parseLevel converts string level to slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level: %s", levelStr)
	}
}

// createFileWriter creates a lumberjack file writer for log rotation.
func createFileWriter(fc config.FileOutputConfig) (io.Writer, error) {
	if fc.Path == "" {
		return nil, fmt.Errorf("file output requires 'path' field")
	}
	return &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.Rotation.MaxSizeMB,
		MaxBackups: fc.Rotation.MaxBackups,
		MaxAge:     fc.Rotation.MaxAgeDays,
		Compress:   fc.Rotation.Compress,
	}, nil
}
