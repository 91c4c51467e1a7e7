package config

const (
	defaultOutputDir      = "~/sonforge/output"
	defaultLogDir         = "~/.local/share/sonforge/logs"
	defaultHistoryDB      = "~/.local/share/sonforge/history.db"
	defaultBeatsCache     = "~/.local/share/sonforge/beats.json"
	defaultLockFilePath   = "~/.local/share/sonforge/sonforge.lock"
	defaultDSPBinary      = "dspenc"
	defaultOGGBinary      = "oggenc2sns"
	defaultEncodeTimeout  = 900
	defaultMinFreeSpaceMB = 256
	defaultSampleRate     = 32000
	defaultFormat         = "sns"
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// AllowedSampleRates lists the sample rates the codec back-ends accept.
var AllowedSampleRates = []int{22050, 24000, 32000, 44100, 48000}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
			HistoryDB:    defaultHistoryDB,
			BeatsCache:   defaultBeatsCache,
			LockFilePath: defaultLockFilePath,
		},
		Tools: Tools{
			DSPBinary:      defaultDSPBinary,
			OGGBinary:      defaultOGGBinary,
			EncodeTimeout:  defaultEncodeTimeout,
			MinFreeSpaceMB: defaultMinFreeSpaceMB,
		},
		Defaults: Defaults{
			SampleRate: defaultSampleRate,
			Format:     defaultFormat,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Conversions:    true,
			Beats:          false,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
