//go:build !unix

package platform

type unsupportedReplacer struct{}

func newProcessReplacer() ProcessReplacer {
	return unsupportedReplacer{}
}

func (unsupportedReplacer) Replace(argv []string) error {
	if len(argv) == 0 {
		return errEmptyCommand
	}
	return ErrReplaceUnsupported
}
