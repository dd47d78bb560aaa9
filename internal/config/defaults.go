package config

const (
	defaultDropDir         = "~/cdr/Audio_from_CIPSFTP"
	defaultLogDir          = "~/.local/share/glossaudio/logs"
	defaultDatabase        = "~/.local/share/glossaudio/cdr.db"
	defaultSessionUser     = "audio-import"
	defaultFallbackCreator = "Vanessa Richardson, VR Voice"
	defaultProbeBackend    = ProbeNative
	defaultFFprobeBinary   = "ffprobe"
	defaultServerBind      = "127.0.0.1:7488"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Supported probe backends.
const (
	ProbeNative  = "native"
	ProbeFFprobe = "ffprobe"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DropDir:  defaultDropDir,
			LogDir:   defaultLogDir,
			Database: defaultDatabase,
		},
		Session: Session{
			User: defaultSessionUser,
		},
		Media: Media{
			FallbackCreator: defaultFallbackCreator,
		},
		Probe: Probe{
			Backend:       defaultProbeBackend,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
