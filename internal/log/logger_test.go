package log

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"firestige.xyz/wapdec/internal/config"
)

func TestParseLevelValid(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if err != nil {
				t.Errorf("parseLevel(%q) returned error: %v", tt.input, err)
			}
			if level != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level, tt.expected)
			}
		})
	}
}

func TestParseLevelInvalid(t *testing.T) {
	for _, input := range []string{"invalid", "trace", "fatal", ""} {
		t.Run(input, func(t *testing.T) {
			if _, err := parseLevel(input); err == nil {
				t.Errorf("parseLevel(%q) should return error, got nil", input)
			}
		})
	}
}

func TestInitWithFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	cfg := config.LogConfig{
		Level:  "debug",
		Format: "text",
		Outputs: config.LogOutputsConfig{
			File: config.FileOutputConfig{
				Enabled:  true,
				Path:     logPath,
				Rotation: config.RotationConfig{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 7},
			},
		},
	}
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	if err := Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	slog.Info("test message", "key", "value")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file was not created at %s: %v", logPath, err)
	}
	if !strings.Contains(string(data), "key=value") {
		t.Errorf("log file missing record: %q", data)
	}
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LogConfig
		want string
	}{
		{"level", config.LogConfig{Level: "invalid", Format: "json"}, "invalid log level"},
		{"format", config.LogConfig{Level: "info", Format: "xml"}, "unsupported log format"},
		{"file path", config.LogConfig{Level: "info", Format: "json",
			Outputs: config.LogOutputsConfig{File: config.FileOutputConfig{Enabled: true}}}, "path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestHandlerFormats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"json", []string{`"msg":"decoded"`, `"pdu":"m-send-req"`, `"fields":12`}},
		{"text", []string{"msg=decoded", "pdu=m-send-req", "fields=12"}},
		{"pattern", []string{"[info] decoded", "fields=12,pdu=m-send-req"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			h, err := NewHandler(config.LogConfig{Level: "info", Format: tt.format}, &buf)
			if err != nil {
				t.Fatalf("NewHandler failed: %v", err)
			}
			slog.New(h).Info("decoded", "pdu", "m-send-req", "fields", 12)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestPatternHandlerLevelsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(config.LogConfig{Level: "warn", Format: "pattern", Pattern: "%level|%msg|%field%n"}, &buf)
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	logger := slog.New(h).With("pipeline", 0).WithGroup("wsp")

	logger.Info("dropped")
	logger.Warn("kept", "tid", 1)

	got := buf.String()
	if strings.Contains(got, "dropped") {
		t.Errorf("info record should be filtered: %q", got)
	}
	if got != "warning|kept|pipeline=0,wsp.tid=1\n" {
		t.Errorf("unexpected output %q", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestMultiWriterContinuesAfterError(t *testing.T) {
	var buf bytes.Buffer
	w := NewMultiWriter().Add(failingWriter{}).Add(&buf)

	n, err := w.Write([]byte("line"))
	if err == nil {
		t.Error("expected error from failing writer")
	}
	if n != 4 {
		t.Errorf("expected 4 bytes reported, got %d", n)
	}
	if buf.String() != "line" {
		t.Errorf("second writer got %q", buf.String())
	}
}
