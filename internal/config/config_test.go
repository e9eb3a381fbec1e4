package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"voxpitch/internal/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate before normalization of paths: %v", err)
	}
	if cfg.Upload.MaxUploadMiB != 50 {
		t.Fatalf("expected 50 MiB default ceiling, got %d", cfg.Upload.MaxUploadMiB)
	}
	if cfg.Transform.BaseSampleRate != 44100 {
		t.Fatalf("expected 44100 default base rate, got %d", cfg.Transform.BaseSampleRate)
	}
	if cfg.Logging.RetentionDays != 60 {
		t.Fatalf("expected 60 day default log retention, got %d", cfg.Logging.RetentionDays)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file to be reported as absent")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.RetentionTTL() != time.Hour {
		t.Fatalf("expected 1h default TTL, got %s", cfg.RetentionTTL())
	}
	if cfg.SweepInterval() != 30*time.Minute {
		t.Fatalf("expected 30m default sweep interval, got %s", cfg.SweepInterval())
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
incoming_dir = "` + filepath.Join(dir, "in") + `"
derived_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
api_bind = "127.0.0.1:0"

[upload]
max_upload_mib = 10

[transform]
base_sample_rate = 48000
timeout_seconds = 30

[retention]
ttl_minutes = 5
sweep_interval_minutes = 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.MaxUploadBytes() != 10*1024*1024 {
		t.Fatalf("unexpected upload ceiling: %d", cfg.MaxUploadBytes())
	}
	if cfg.Transform.BaseSampleRate != 48000 {
		t.Fatalf("unexpected base rate: %d", cfg.Transform.BaseSampleRate)
	}
	if cfg.TransformTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.TransformTimeout())
	}
	if cfg.RetentionTTL() != 5*time.Minute {
		t.Fatalf("unexpected TTL: %s", cfg.RetentionTTL())
	}
}

func TestValidateRejectsSharedDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.IncomingDir = "/tmp/voxpitch-shared"
	cfg.Paths.DerivedDir = "/tmp/voxpitch-shared"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected shared-directory rejection, got %v", err)
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown log format to fail validation")
	}
}

func TestLoadRejectsBadSampleRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[transform]\nbase_sample_rate = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected sample rate rejection")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IncomingDir = filepath.Join(dir, "in")
	cfg.Paths.DerivedDir = filepath.Join(dir, "out")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.IncomingDir, cfg.Paths.DerivedDir, cfg.Paths.LogDir} {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", p, err)
		}
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[transform]") {
		t.Fatal("sample config missing transform section")
	}

	// The sample must itself parse and validate.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}
