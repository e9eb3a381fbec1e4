package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateTransform(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.IncomingDir == "" {
		return errors.New("paths.incoming_dir must be set")
	}
	if c.Paths.DerivedDir == "" {
		return errors.New("paths.derived_dir must be set")
	}
	if c.Paths.IncomingDir == c.Paths.DerivedDir {
		return errors.New("paths.incoming_dir and paths.derived_dir must differ")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxUploadMiB > 2048 {
		return fmt.Errorf("upload.max_upload_mib %d exceeds the 2048 MiB ceiling", c.Upload.MaxUploadMiB)
	}
	return nil
}

func (c *Config) validateTransform() error {
	if c.Transform.BaseSampleRate < 8000 || c.Transform.BaseSampleRate > 192000 {
		return fmt.Errorf("transform.base_sample_rate %d must be between 8000 and 192000", c.Transform.BaseSampleRate)
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.SweepIntervalMinutes > c.Retention.TTLMinutes*24 {
		return errors.New("retention.sweep_interval_minutes is too large relative to ttl_minutes")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
