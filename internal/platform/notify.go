package platform

import (
	"errors"
	"time"
)

// ErrNotifyUnsupported indicates desktop notifications are not available on
// this system.
var ErrNotifyUnsupported = errors.New("desktop notifications unsupported")

// Notifier posts a desktop notification.
type Notifier interface {
	Notify(summary, body string) error
}

// NewNotifier returns a platform-specific notifier. timeout bounds both the
// request and how long the notification stays visible.
func NewNotifier(appName string, timeout time.Duration) Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return newNotifier(appName, timeout)
}
