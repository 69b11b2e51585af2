package timekeeper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"eggtimer/internal/core/model"
)

// ErrAlreadyArmed is returned by Arm once the countdown has been started.
var ErrAlreadyArmed = errors.New("countdown already armed")

// errNoReplacer is wrapped into an ExecError when exec mode has no replacer.
var errNoReplacer = errors.New("no process replacer configured")

// Countdown is a one-shot alarm with whole-second granularity.
type Countdown interface {
	// Arm schedules an expiry after seconds.
	Arm(seconds uint32)
	// Disarm cancels the alarm and returns the seconds that were left,
	// or 0 when nothing was pending.
	Disarm() uint32
	// Expired delivers one value per expiry.
	Expired() <-chan struct{}
}

// ProcessReplacer swaps the running program for argv[0].
// Replace does not return on success.
type ProcessReplacer interface {
	Replace(argv []string) error
}

// Notifier sends an out-of-band completion notice.
type Notifier interface {
	Notify(summary, body string) error
}

// ExecError reports a failed process replacement.
type ExecError struct {
	Command string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec %s: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Config contains runtime options for TimeKeeper.
type Config struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *log.Logger
	Replacer ProcessReplacer
	// Notifier is optional.
	Notifier      Notifier
	NotifySummary string
}

// TimeKeeper is the countdown state machine. Its handlers are meant to be
// driven from a single goroutine, normally Run; the mutex only makes the
// accessors safe for observers.
type TimeKeeper struct {
	mu        sync.Mutex
	config    model.TimerConfig
	options   Config
	countdown Countdown
	state     State
	remaining uint32
	events    []chan Event
}

// New creates a TimeKeeper for config using countdown as its alarm.
func New(config model.TimerConfig, countdown Countdown, options Config) *TimeKeeper {
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}
	if options.Stderr == nil {
		options.Stderr = os.Stderr
	}
	if options.Logger == nil {
		options.Logger = log.New(io.Discard, "", 0)
	}
	if options.NotifySummary == "" {
		options.NotifySummary = "Timer finished"
	}

	return &TimeKeeper{
		config:    config,
		options:   options,
		countdown: countdown,
		state:     StateIdle,
	}
}

// Subscribe registers a new observer channel. Channels are closed when Run
// returns.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// State returns the current state.
func (keeper *TimeKeeper) State() State {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state
}

// Paused reports whether the countdown is currently suspended.
func (keeper *TimeKeeper) Paused() bool {
	return keeper.State() == StatePaused
}

// Remaining returns the seconds captured at the last pause. It is only
// meaningful while paused.
func (keeper *TimeKeeper) Remaining() uint32 {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.remaining
}

// Run arms the configured countdown and handles events until the timer
// completes or ctx is cancelled. On a successful exec it never returns.
func (keeper *TimeKeeper) Run(ctx context.Context, toggles <-chan struct{}) error {
	defer keeper.closeSubscribers()

	if err := keeper.Arm(keeper.config.TotalSeconds); err != nil {
		return err
	}

	expired := keeper.countdown.Expired()
	for {
		select {
		case <-ctx.Done():
			keeper.countdown.Disarm()
			return ctx.Err()
		case <-expired:
			if err := keeper.OnExpiry(); err != nil {
				return err
			}
			if keeper.State().Terminal() {
				return nil
			}
		case _, ok := <-toggles:
			if !ok {
				toggles = nil
				continue
			}
			keeper.OnPauseToggle()
		}
	}
}

// Arm starts the countdown for seconds. It moves the keeper from idle to
// running and fails in any other state.
func (keeper *TimeKeeper) Arm(seconds uint32) error {
	keeper.mu.Lock()
	if keeper.state != StateIdle {
		state := keeper.state
		keeper.mu.Unlock()
		return fmt.Errorf("arm in state %s: %w", state, ErrAlreadyArmed)
	}
	keeper.countdown.Arm(seconds)
	keeper.setStateLocked(StateRunning, seconds)
	keeper.mu.Unlock()

	keeper.options.Logger.Printf("countdown armed for %d seconds (action %s)", seconds, keeper.config.Action)
	return nil
}

// OnExpiry performs the configured action. Expiries outside the running
// state are stale and ignored.
func (keeper *TimeKeeper) OnExpiry() error {
	keeper.mu.Lock()
	if keeper.state != StateRunning {
		state := keeper.state
		keeper.mu.Unlock()
		keeper.options.Logger.Printf("ignoring expiry in state %s", state)
		return nil
	}
	action := keeper.config.Action
	keeper.mu.Unlock()

	switch action {
	case model.ActionAlert:
		if _, err := io.WriteString(keeper.options.Stdout, "\a"); err != nil {
			keeper.options.Logger.Printf("write alert: %v", err)
		}
		keeper.notify()
		keeper.finish(StateCompletedAlert)
	case model.ActionExec:
		// Nothing runs after a successful replace.
		keeper.notify()
		return keeper.replace()
	default:
		keeper.notify()
		keeper.finish(StateCompletedExit)
	}
	return nil
}

// OnPauseToggle suspends a running countdown or resumes a paused one.
func (keeper *TimeKeeper) OnPauseToggle() {
	// The alarm has to be stopped before looking at the state so that the
	// captured value is the time left at this instant.
	remaining := keeper.countdown.Disarm()

	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	switch keeper.state {
	case StatePaused:
		fmt.Fprintln(keeper.options.Stdout, "Timer resumed")
		keeper.countdown.Arm(keeper.remaining)
		keeper.setStateLocked(StateRunning, keeper.remaining)
		keeper.options.Logger.Printf("resumed with %d seconds", keeper.remaining)
	case StateRunning:
		fmt.Fprintf(keeper.options.Stdout, "Timer paused, %d seconds remaining\n", remaining)
		keeper.remaining = remaining
		keeper.setStateLocked(StatePaused, remaining)
		keeper.options.Logger.Printf("paused with %d seconds", remaining)
	default:
		keeper.options.Logger.Printf("ignoring pause toggle in state %s", keeper.state)
	}
}

func (keeper *TimeKeeper) replace() error {
	argv := keeper.config.ExecArgv
	if len(argv) == 0 {
		return keeper.execFailed("", errors.New("empty command"))
	}
	if keeper.options.Replacer == nil {
		return keeper.execFailed(argv[0], errNoReplacer)
	}

	keeper.finish(StateCompletedExec)
	keeper.options.Logger.Printf("replacing process with %q", argv)
	if err := keeper.options.Replacer.Replace(argv); err != nil {
		return keeper.execFailed(argv[0], err)
	}
	return nil
}

func (keeper *TimeKeeper) execFailed(command string, cause error) error {
	execErr := &ExecError{Command: command, Err: cause}
	fmt.Fprintf(keeper.options.Stderr, "Error: Exec failed: %v\n", cause)

	keeper.mu.Lock()
	keeper.state = StateCompletedExecFailed
	keeper.emitLocked(Event{
		Type:    EventExecError,
		State:   StateCompletedExecFailed,
		Message: execErr.Error(),
		At:      time.Now(),
	})
	keeper.mu.Unlock()
	return execErr
}

func (keeper *TimeKeeper) notify() {
	if keeper.options.Notifier == nil {
		return
	}
	body := fmt.Sprintf("%d second countdown elapsed", keeper.config.TotalSeconds)
	if err := keeper.options.Notifier.Notify(keeper.options.NotifySummary, body); err != nil {
		keeper.options.Logger.Printf("desktop notification: %v", err)
	}
}

func (keeper *TimeKeeper) finish(state State) {
	keeper.mu.Lock()
	keeper.setStateLocked(state, 0)
	keeper.mu.Unlock()
	keeper.options.Logger.Printf("timer %s", state)
}

func (keeper *TimeKeeper) setStateLocked(state State, remaining uint32) {
	keeper.state = state
	keeper.emitLocked(Event{
		Type:      EventStateChange,
		State:     state,
		Remaining: remaining,
		At:        time.Now(),
	})
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func (keeper *TimeKeeper) closeSubscribers() {
	keeper.mu.Lock()
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}
