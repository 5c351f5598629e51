package config

const (
	defaultPlexURL            = "http://127.0.0.1:32400"
	defaultPlexLibrary        = "Movies"
	defaultPlexTimeoutSeconds = 30
	defaultLogDir             = "~/.local/share/reelist/logs"
	defaultStateDir           = "~/.local/share/reelist/state"
	defaultReportDir          = "~/.local/share/reelist/reports"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plex: Plex{
			URL:            defaultPlexURL,
			Library:        defaultPlexLibrary,
			TimeoutSeconds: defaultPlexTimeoutSeconds,
		},
		Paths: Paths{
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
			ReportDir: defaultReportDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
