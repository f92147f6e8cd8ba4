package constants

import "time"

const (
	AppName            = "alarmist"
	DefaultKeyringUser = "database-connection"
	SessionKeyringUser = "session"
	DefaultDataDir     = "~/.config/alarmist"
	DefaultConfigFile  = "config.yml"
	DefaultDBFile      = "alarmist.db"
	DefaultCacheFile   = "alarms-cache.json"
	DefaultFileStore   = "alarms.json"
	SoundsDirName      = "sounds"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Scheduler
	TickInterval = time.Second

	// Snooze
	SnoozeDuration    = 5 * time.Minute
	SnoozeLabelSuffix = " (Snoozed)"
	DefaultAlarmLabel = "Alarm"

	// Teardown re-checks issued after Stop to catch audio the platform keeps alive
	TeardownRecheckShort = 100 * time.Millisecond
	TeardownRecheckLong  = 500 * time.Millisecond

	// Tone layer
	ToneSampleRate   = 44100
	ToneFrequencyHz  = 800
	ToneDuration     = 500 * time.Millisecond
	ToneAmplitude    = 0.3
	ToneRepeatPeriod = time.Second

	// Oscillator layer
	OscillatorHighHz      = 800
	OscillatorLowHz       = 600
	OscillatorGain        = 0.3
	OscillatorPulsePeriod = 500 * time.Millisecond

	// Beep layer
	BeepRepeatPeriod = 2 * time.Second

	// Visual layer
	FlashInterval = 500 * time.Millisecond
	MaxFlashes    = 20
	FlashColorOn  = "#ff0000"
	FlashColorOff = "#ffffff"

	// Sound test
	SoundTestDuration = 3 * time.Second

	// Custom sounds
	MaxSoundFileBytes = 10 * 1024 * 1024

	// Toasts
	ToastDuration = 3 * time.Second

	// Notify constants
	NotifierLockfileName   = "alarmist-notifier.lock"
	NotificationDurationMs = 10000
	TrayAppIdentifier      = "com.julianstephens.alarmist"
	TrayExecutablePrefix   = "alarmist-tray"

	// Remote storage
	DefaultRemoteTimeout = 5 * time.Second
	DefaultAPIAddr       = "127.0.0.1:3001"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRemote   = "remote"
	DriverFile     = "file"
)

// Playback layer names, in fallback order
const (
	LayerCustom     = "custom"
	LayerTone       = "tone"
	LayerOscillator = "oscillator"
	LayerBeep       = "beep"
	LayerVisual     = "visual"
)

// AllowedSoundExtensions lists custom sound file types accepted on import.
var AllowedSoundExtensions = []string{".mp3", ".wav", ".ogg", ".m4a", ".mp4"}
