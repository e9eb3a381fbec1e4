package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxpitch/internal/config"
	"voxpitch/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected unknown format to fail")
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := New(Options{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("artifact saved", String("artifact_id", "abc"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "artifact saved") || !strings.Contains(string(data), "artifact_id") {
		t.Fatalf("unexpected log output: %s", data)
	}
}

func TestNewFromConfigCreatesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	if _, err := NewFromConfig(&cfg); err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.LogDir); err != nil {
		t.Fatalf("expected log dir to exist: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug")
	}
	if parseLevel("") != slog.LevelInfo {
		t.Fatal("empty should default to info")
	}
	if parseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unknown should default to info")
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")
	logger, err := New(Options{Format: "json", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatal(err)
	}

	ctx := services.WithRequestID(context.Background(), "req-42")
	WithContext(ctx, logger).Info("handled")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "req-42") {
		t.Fatalf("expected request id in output: %s", data)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must report disabled at every level.
	logger.Error("ignored")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
