package cliconfig

import (
	"os"

	"github.com/bft-labs/lectrec/pkg/log"
)

// Logger returns a console logger on stderr at the given level.
func Logger(level string) (*log.ZerologAdapter, error) {
	return log.NewZerologAdapter(os.Stderr, level)
}
