//go:build !linux

package platform

import "time"

type unsupportedNotifier struct{}

func newNotifier(string, time.Duration) Notifier {
	return unsupportedNotifier{}
}

func (unsupportedNotifier) Notify(string, string) error {
	return ErrNotifyUnsupported
}
