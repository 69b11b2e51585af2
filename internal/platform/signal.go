package platform

import (
	"context"
	"os"
	"os/signal"
)

// WatchToggle turns interrupt signals into pause toggle requests. Requests
// are queued in delivery order on the returned channel, which is closed once
// ctx is done.
func WatchToggle(ctx context.Context) <-chan struct{} {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	toggles := make(chan struct{}, 8)
	go func() {
		defer close(toggles)
		defer signal.Stop(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				select {
				case toggles <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return toggles
}
