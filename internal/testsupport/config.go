package testsupport

import (
	"path/filepath"
	"testing"

	"voxpitch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IncomingDir = filepath.Join(base, "incoming")
	cfg.Paths.DerivedDir = filepath.Join(base, "derived")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Transform.TimeoutSeconds = 5
	cfg.Retention.TTLMinutes = 60
	cfg.Retention.SweepIntervalMinutes = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithMaxUploadMiB overrides the ingest ceiling on the test config.
func WithMaxUploadMiB(mib int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Upload.MaxUploadMiB = mib
	}
}

// WithTTLMinutes overrides the retention TTL on the test config.
func WithTTLMinutes(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Retention.TTLMinutes = minutes
	}
}
