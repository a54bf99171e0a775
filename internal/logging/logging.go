package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns the logger used by the CLI and the packages it wires together.
// Verbose switches to debug level.
func New(verbose bool) *logrus.Logger {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

// NewNop returns a logger that discards everything. Tests use it so
// components that require a logger stay quiet.
func NewNop() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
