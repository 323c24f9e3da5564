// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Init sets JSON output and the level named by level, falling back to info.
func Init(level string) {
	InitWithOutput(level, os.Stdout)
}

// InitWithOutput is Init with an explicit writer.
func InitWithOutput(level string, out io.Writer) {
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", level)
		return
	}
	logrus.SetLevel(lvl)
}
