// Package logger provides modifications to charmbracelet/log's default logger
// shared by the matcher packages and the mohu binary.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates a new charm log scoped to a package prefix. The logger takes
// the process-wide level at the moment New is called; a later SetDebug does
// not change the level of loggers already created.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// SetDebug switches the global level between Debug and Info.
func SetDebug(debug bool) {
	if debug {
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetLevel(log.InfoLevel)
}
