package platform

import (
	"errors"
	"os/exec"
)

// ErrReplaceUnsupported indicates the platform cannot replace the running
// process image.
var ErrReplaceUnsupported = errors.New("process replacement unsupported")

var errEmptyCommand = errors.New("empty command")

// ProcessReplacer swaps the running program for another one, keeping the
// process identity.
type ProcessReplacer interface {
	// Replace does not return on success.
	Replace(argv []string) error
}

// NewProcessReplacer returns a platform-specific replacer.
func NewProcessReplacer() ProcessReplacer {
	return newProcessReplacer()
}

// lookupCommand resolves name against PATH the way execvp does. Names that
// contain a slash are used as given.
func lookupCommand(name string) (string, error) {
	if name == "" {
		return "", errEmptyCommand
	}
	path, err := exec.LookPath(name)
	if err != nil && !errors.Is(err, exec.ErrDot) {
		return "", err
	}
	return path, nil
}
