//go:build unix

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

type execReplacer struct {
	environ func() []string
}

func newProcessReplacer() ProcessReplacer {
	return &execReplacer{environ: os.Environ}
}

func (replacer *execReplacer) Replace(argv []string) error {
	if len(argv) == 0 {
		return errEmptyCommand
	}
	path, err := lookupCommand(argv[0])
	if err != nil {
		return err
	}
	if err := unix.Exec(path, argv, replacer.environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
