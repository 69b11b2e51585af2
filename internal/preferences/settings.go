package preferences

import (
	"io"
	"log"
	"time"
)

// Settings defines user preferences read from the settings file. They tune
// the ambient behaviour of the timer, never its countdown semantics.
type Settings struct {
	Debug         bool
	DesktopNotify bool
	NotifySummary string
	NotifyTimeout time.Duration
}

// DefaultSettings returns default settings for eggtimer.
func DefaultSettings() Settings {
	return Settings{
		Debug:         false,
		DesktopNotify: false,
		NotifySummary: "Timer finished",
		NotifyTimeout: 5 * time.Second,
	}
}

// Logger returns the diagnostic logger for these settings. Without debug
// enabled everything is discarded so that a normal run prints nothing.
func (settings Settings) Logger(stderr io.Writer) *log.Logger {
	if !settings.Debug || stderr == nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(stderr, "eggtimer: ", log.LstdFlags)
}
