package platform

import (
	"math"
	"sync"
	"time"
)

// Alarm is a one-shot countdown with whole-second granularity. Expiries are
// delivered on a channel so that they can be handled outside the timer
// goroutine.
type Alarm struct {
	mu         sync.Mutex
	timer      *time.Timer
	deadline   time.Time
	generation uint64
	expired    chan struct{}
	now        func() time.Time
}

// NewAlarm returns a disarmed alarm.
func NewAlarm() *Alarm {
	return &Alarm{
		expired: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Arm replaces any pending expiry with one seconds from now. Zero expires
// immediately.
func (alarm *Alarm) Arm(seconds uint32) {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()

	alarm.stopLocked()
	generation := alarm.generation
	duration := time.Duration(seconds) * time.Second
	alarm.deadline = alarm.now().Add(duration)
	alarm.timer = time.AfterFunc(duration, func() {
		alarm.fire(generation)
	})
}

// Disarm cancels the pending expiry and returns the whole seconds that were
// left. An expiry that fired but was not consumed yet is discarded.
func (alarm *Alarm) Disarm() uint32 {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()

	if alarm.timer == nil {
		alarm.stopLocked()
		return 0
	}
	remaining := alarm.deadline.Sub(alarm.now())
	alarm.stopLocked()
	return roundSeconds(remaining)
}

// Expired delivers one value per expiry.
func (alarm *Alarm) Expired() <-chan struct{} {
	return alarm.expired
}

func (alarm *Alarm) fire(generation uint64) {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()

	if generation != alarm.generation || alarm.timer == nil {
		return
	}
	alarm.timer = nil
	select {
	case alarm.expired <- struct{}{}:
	default:
	}
}

func (alarm *Alarm) stopLocked() {
	if alarm.timer != nil {
		alarm.timer.Stop()
		alarm.timer = nil
	}
	alarm.generation++
	select {
	case <-alarm.expired:
	default:
	}
}

// roundSeconds converts a remaining duration the way alarm(2) reports it:
// to the nearest second, but never 0 while time is left.
func roundSeconds(remaining time.Duration) uint32 {
	if remaining <= 0 {
		return 0
	}
	seconds := remaining / time.Second
	if remaining%time.Second >= 500*time.Millisecond {
		seconds++
	}
	if seconds == 0 {
		seconds = 1
	}
	if seconds > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(seconds)
}
