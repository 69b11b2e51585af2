//go:build linux

package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest   = "org.freedesktop.Notifications"
	notificationsPath   = "/org/freedesktop/Notifications"
	notificationsMethod = "org.freedesktop.Notifications.Notify"
)

type dbusNotifier struct {
	appName string
	timeout time.Duration
	send    func(ctx context.Context, summary, body string) error
}

func newNotifier(appName string, timeout time.Duration) Notifier {
	notifier := &dbusNotifier{appName: appName, timeout: timeout}
	notifier.send = notifier.sendDBus
	return notifier
}

// Notify gives up after the notifier timeout, including the time spent
// connecting to the session bus.
func (notifier *dbusNotifier) Notify(summary, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), notifier.timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- notifier.send(ctx, summary, body)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send notification: %w", ctx.Err())
	}
}

func (notifier *dbusNotifier) sendDBus(ctx context.Context, summary, body string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	object := conn.Object(notificationsDest, dbus.ObjectPath(notificationsPath))
	call := object.CallWithContext(ctx, notificationsMethod, 0,
		notifier.appName,
		uint32(0),
		"",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		int32(notifier.timeout/time.Millisecond),
	)
	if call.Err != nil {
		return fmt.Errorf("send notification: %w", call.Err)
	}
	return nil
}
