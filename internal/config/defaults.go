package config

const (
	defaultConfigPath        = "~/.config/reel/config.toml"
	projectConfigName        = "reel.toml"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultReadTimeout       = 60
	defaultWriteTimeout      = 60
	defaultCodec             = "libx264"
	defaultPreset            = "medium"
	defaultOutputPixelFormat = "yuv420p"
	defaultResizeFilter      = "lanczos3"
	defaultGrayscaleMode     = "replicate"
	defaultLogDir            = "~/.local/share/reel/logs"
	defaultLogRetentionDays  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		FFmpeg: FFmpeg{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			ReadTimeoutSeconds:  defaultReadTimeout,
			WriteTimeoutSeconds: defaultWriteTimeout,
		},
		Encoder: Encoder{
			Codec:       defaultCodec,
			Preset:      defaultPreset,
			PixelFormat: defaultOutputPixelFormat,
		},
		Effects: Effects{
			ResizeFilter:  defaultResizeFilter,
			GrayscaleMode: defaultGrayscaleMode,
		},
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
