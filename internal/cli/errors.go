package cli

import "fmt"

// ConfigError reports a command line that cannot be turned into a timer.
type ConfigError struct {
	Message string
	// Usage asks the caller to print the usage text as well.
	Usage bool
}

func (e *ConfigError) Error() string {
	if e.Message == "" {
		return "invalid command line"
	}
	return e.Message
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

func usageError(message string) *ConfigError {
	return &ConfigError{Message: message, Usage: true}
}
