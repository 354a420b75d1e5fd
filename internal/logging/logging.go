// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logrus logger writing to stdout. Production uses the JSON
// formatter; everything else gets the human-readable text formatter.
func New(level, environment string) *logrus.Logger {
	return NewWithWriter(os.Stdout, level, environment)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
