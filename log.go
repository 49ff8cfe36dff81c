package qsim

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "qsim",
	Level:  log.WarnLevel,
})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// SetLogOutput redirects the package logger, keeping its level and prefix.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetLogLevel adjusts the package logger's verbosity.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}
