package model

import (
	"errors"
	"math"
)

// MaxSeconds is the largest countdown the timer accepts.
const MaxSeconds = math.MaxUint32

// Action is what the timer does when the countdown reaches zero.
type Action int

const (
	ActionExit Action = iota
	ActionAlert
	ActionExec
)

func (action Action) String() string {
	switch action {
	case ActionExit:
		return "exit"
	case ActionAlert:
		return "alert"
	case ActionExec:
		return "exec"
	default:
		return "unknown"
	}
}

// TimerConfig is the parsed command line. It is not modified after parsing.
type TimerConfig struct {
	TotalSeconds uint32
	Action       Action
	// ExecArgv is set only for ActionExec; ExecArgv[0] names the executable.
	ExecArgv []string
}

// Validate checks the invariants the parser guarantees.
func (config TimerConfig) Validate() error {
	if config.TotalSeconds == 0 {
		return errors.New("timer duration is zero")
	}
	switch config.Action {
	case ActionExit, ActionAlert:
		if len(config.ExecArgv) != 0 {
			return errors.New("exec command given without exec action")
		}
	case ActionExec:
		if len(config.ExecArgv) == 0 {
			return errors.New("exec action without command")
		}
	default:
		return errors.New("unknown timer action")
	}
	return nil
}
