package config

const (
	defaultGeneratedDir     = "generated"
	defaultPullDir          = "pull"
	defaultLogDir           = "~/.local/share/vidops/logs"
	defaultThresholds       = "1:10,2:4,3:4"
	defaultMaxWindowSeconds = 20.0
	defaultTranscriber      = "whisper-cli"
	defaultModel            = "small"
	defaultLanguage         = "en"
	defaultWorkers          = 1
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectRoot:  ".",
			GeneratedDir: defaultGeneratedDir,
			PullDir:      defaultPullDir,
			LogDir:       defaultLogDir,
		},
		Detector: Detector{
			Thresholds:       defaultThresholds,
			MaxWindowSeconds: defaultMaxWindowSeconds,
		},
		Retry: Retry{
			Transcriber: defaultTranscriber,
			Model:       defaultModel,
			Language:    defaultLanguage,
			Workers:     defaultWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
