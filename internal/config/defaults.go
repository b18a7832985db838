package config

const (
	defaultFmaskDir       = "/usr/GERS/Fmask_4_3/application/run_Fmask_4_3.sh"
	defaultMRDir          = "/usr/local/MATLAB/MATLAB_Runtime/v96"
	defaultShell          = "/bin/sh"
	defaultHistoryDB      = "~/.local/share/gofmask/history.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultHistoryEnabled = true
	defaultStaleHours     = 24
	defaultNtfyTimeout    = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Fmask: Fmask{
			FmaskDir: defaultFmaskDir,
			MRDir:    defaultMRDir,
			Shell:    defaultShell,
		},
		Paths: Paths{
			HistoryDB: defaultHistoryDB,
		},
		Staging: Staging{
			StaleHours: defaultStaleHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
