package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeUpload()
	c.normalizeTransform()
	c.normalizeRetention()
	c.normalizeStorage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.IncomingDir, err = expandPath(c.Paths.IncomingDir); err != nil {
		return fmt.Errorf("paths.incoming_dir: %w", err)
	}
	if c.Paths.DerivedDir, err = expandPath(c.Paths.DerivedDir); err != nil {
		return fmt.Errorf("paths.derived_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeUpload() {
	if c.Upload.MaxUploadMiB <= 0 {
		c.Upload.MaxUploadMiB = defaultMaxUploadMiB
	}
}

func (c *Config) normalizeTransform() {
	c.Transform.FFmpegBinary = strings.TrimSpace(c.Transform.FFmpegBinary)
	if c.Transform.FFmpegBinary == "" {
		c.Transform.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Transform.BaseSampleRate <= 0 {
		c.Transform.BaseSampleRate = defaultBaseSampleRate
	}
	if c.Transform.TimeoutSeconds <= 0 {
		c.Transform.TimeoutSeconds = defaultTransformTimeoutSecs
	}
}

func (c *Config) normalizeRetention() {
	if c.Retention.TTLMinutes <= 0 {
		c.Retention.TTLMinutes = defaultRetentionTTLMinutes
	}
	if c.Retention.SweepIntervalMinutes <= 0 {
		c.Retention.SweepIntervalMinutes = defaultSweepIntervalMinutes
	}
}

func (c *Config) normalizeStorage() {
	if c.Storage.MinFreeDiskMiB < 0 {
		c.Storage.MinFreeDiskMiB = defaultMinFreeDiskMiB
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
