package timekeeper

import "time"

// State represents the current TimeKeeper mode.
type State string

const (
	StateIdle                State = "idle"
	StateRunning             State = "running"
	StatePaused              State = "paused"
	StateCompletedExit       State = "completed_exit"
	StateCompletedAlert      State = "completed_alert"
	StateCompletedExec       State = "completed_exec"
	StateCompletedExecFailed State = "completed_exec_failed"
)

// Terminal reports whether no further transitions can happen from state.
func (state State) Terminal() bool {
	switch state {
	case StateCompletedExit, StateCompletedAlert, StateCompletedExec, StateCompletedExecFailed:
		return true
	}
	return false
}

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventExecError   EventType = "exec_error"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type      EventType
	State     State
	Remaining uint32
	Message   string
	At        time.Time
}
