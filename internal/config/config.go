package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	IncomingDir string `toml:"incoming_dir"`
	DerivedDir  string `toml:"derived_dir"`
	LogDir      string `toml:"log_dir"`
	APIBind     string `toml:"api_bind"`
}

// Upload contains ingest limits.
type Upload struct {
	MaxUploadMiB int `toml:"max_upload_mib"`
}

// Transform contains settings for the external audio engine.
type Transform struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	BaseSampleRate int    `toml:"base_sample_rate"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Retention controls artifact expiry.
type Retention struct {
	TTLMinutes           int `toml:"ttl_minutes"`
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
}

// Storage contains preflight thresholds for the artifact directories.
type Storage struct {
	MinFreeDiskMiB int `toml:"min_free_disk_mib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for voxpitch.
//
// Configuration sections by subsystem:
//   - Paths: artifact directories and API bind address
//   - Upload: ingest size ceiling
//   - Transform: ffmpeg binary, base sample rate, wall-clock timeout
//   - Retention: artifact TTL and sweep interval
//   - Storage: free-disk floor checked at startup
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Upload    Upload    `toml:"upload"`
	Transform Transform `toml:"transform"`
	Retention Retention `toml:"retention"`
	Storage   Storage   `toml:"storage"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voxpitch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voxpitch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs to operate.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.IncomingDir, c.Paths.DerivedDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MaxUploadBytes returns the ingest size ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxUploadMiB) * 1024 * 1024
}

// TransformTimeout returns the wall-clock bound for a single engine invocation.
func (c *Config) TransformTimeout() time.Duration {
	return time.Duration(c.Transform.TimeoutSeconds) * time.Second
}

// RetentionTTL returns the maximum artifact age before the sweeper removes it.
func (c *Config) RetentionTTL() time.Duration {
	return time.Duration(c.Retention.TTLMinutes) * time.Minute
}

// SweepInterval returns the pause between sweeper passes.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Retention.SweepIntervalMinutes) * time.Minute
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
