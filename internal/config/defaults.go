package config

const (
	defaultIncomingDir          = "~/.local/share/voxpitch/incoming"
	defaultDerivedDir           = "~/.local/share/voxpitch/derived"
	defaultLogDir               = "~/.local/share/voxpitch/logs"
	defaultAPIBind              = "127.0.0.1:7519"
	defaultMaxUploadMiB         = 50
	defaultFFmpegBinary         = "ffmpeg"
	defaultBaseSampleRate       = 44100
	defaultTransformTimeoutSecs = 120
	defaultRetentionTTLMinutes  = 60
	defaultSweepIntervalMinutes = 30
	defaultMinFreeDiskMiB       = 256
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IncomingDir: defaultIncomingDir,
			DerivedDir:  defaultDerivedDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
		},
		Upload: Upload{
			MaxUploadMiB: defaultMaxUploadMiB,
		},
		Transform: Transform{
			FFmpegBinary:   defaultFFmpegBinary,
			BaseSampleRate: defaultBaseSampleRate,
			TimeoutSeconds: defaultTransformTimeoutSecs,
		},
		Retention: Retention{
			TTLMinutes:           defaultRetentionTTLMinutes,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
		},
		Storage: Storage{
			MinFreeDiskMiB: defaultMinFreeDiskMiB,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
