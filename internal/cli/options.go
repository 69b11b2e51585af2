// Package cli turns the eggtimer command line into a TimerConfig.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"eggtimer/internal/core/model"
)

// argumentFlags are the short options that take a value.
const argumentFlags = "hms"

type parser struct {
	total    uint32
	timerSet bool
	action   model.Action
	err      *ConfigError
}

// durationFlag adds its argument, scaled to seconds, to the running total.
type durationFlag struct {
	parser *parser
	unit   string
	scale  uint64
}

func (f *durationFlag) String() string {
	if f == nil || f.parser == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(f.parser.total), 10)
}

func (f *durationFlag) Set(value string) error {
	if err := f.add(value); err != nil {
		if f.parser.err == nil {
			f.parser.err = err
		}
		return err
	}
	return nil
}

func (f *durationFlag) add(value string) *ConfigError {
	if strings.HasPrefix(value, "-") {
		return configErrorf("Negative %s not permitted", f.unit)
	}

	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return configErrorf("%s out of range", capitalize(f.unit))
		}
		return configErrorf("Invalid %s", f.unit)
	}
	if amount > model.MaxSeconds {
		return configErrorf("%s out of range", capitalize(f.unit))
	}

	increment := amount * f.scale
	if increment > model.MaxSeconds-uint64(f.parser.total) {
		return configErrorf("Timer value overflow")
	}

	f.parser.total += uint32(increment)
	f.parser.timerSet = true
	return nil
}

// actionFlag selects the arrival action; the last one on the line wins.
type actionFlag struct {
	parser *parser
	action model.Action
}

func (f *actionFlag) IsBoolFlag() bool {
	return true
}

func (f *actionFlag) String() string {
	return "false"
}

func (f *actionFlag) Set(value string) error {
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	if enabled {
		f.parser.action = f.action
	}
	return nil
}

// Parse builds a TimerConfig from the arguments that follow the program
// name. Errors are always *ConfigError.
func Parse(args []string) (model.TimerConfig, error) {
	if len(args) == 0 {
		return model.TimerConfig{}, &ConfigError{Usage: true}
	}

	var state parser
	flags := flag.NewFlagSet("eggtimer", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}
	flags.Var(&durationFlag{parser: &state, unit: "hours", scale: 3600}, "h", "hours")
	flags.Var(&durationFlag{parser: &state, unit: "minutes", scale: 60}, "m", "minutes")
	flags.Var(&durationFlag{parser: &state, unit: "seconds", scale: 1}, "s", "seconds")
	flags.Var(&actionFlag{parser: &state, action: model.ActionAlert}, "b", "emit a BEL character")
	flags.Var(&actionFlag{parser: &state, action: model.ActionExec}, "e", "exec a command")

	expanded, err := expandClusters(args)
	if err != nil {
		return model.TimerConfig{}, err
	}
	if err := flags.Parse(expanded); err != nil {
		if state.err != nil {
			return model.TimerConfig{}, state.err
		}
		return model.TimerConfig{}, usageError(err.Error())
	}

	if !state.timerSet || state.total == 0 {
		return model.TimerConfig{}, configErrorf("No time given")
	}

	config := model.TimerConfig{
		TotalSeconds: state.total,
		Action:       state.action,
	}
	if state.action == model.ActionExec {
		command := flags.Args()
		if len(command) == 0 {
			return model.TimerConfig{}, configErrorf("Exec mode specified, but no command given")
		}
		config.ExecArgv = append([]string(nil), command...)
	}
	return config, nil
}

// expandClusters rewrites getopt-style short options into the one flag per
// argument form the flag package expects: "-be" becomes "-b -e" and "-s5"
// becomes "-s 5". Rewriting stops at the first non-option or "--" so that
// the command for -e is passed through untouched. Long options do not exist.
func expandClusters(args []string) ([]string, error) {
	expanded := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-" || arg == "--" || !strings.HasPrefix(arg, "-") {
			return append(expanded, args[i:]...), nil
		}
		if strings.HasPrefix(arg, "--") {
			return nil, usageError(fmt.Sprintf("unrecognized option '%s'", arg))
		}

		body := arg[1:]
		for j := 0; j < len(body); j++ {
			name := body[j]
			expanded = append(expanded, "-"+string(name))
			if strings.IndexByte(argumentFlags, name) < 0 {
				continue
			}
			if j+1 < len(body) {
				expanded = append(expanded, body[j+1:])
			} else if i+1 < len(args) {
				i++
				expanded = append(expanded, args[i])
			}
			break
		}
	}
	return expanded, nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
