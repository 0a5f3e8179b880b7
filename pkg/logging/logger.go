// Package logging holds the process wide logrus logger.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the logger used across the service.
var Log = logrus.New()

// Fields is the type of logrus.Fields.
type Fields = logrus.Fields

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	SetLevel(os.Getenv("SEEK_LOG_LEVEL"))
}

// SetLevel sets the log level from its name. Unknown names fall back to info.
func SetLevel(name string) {
	level, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}

// IsDebug reports whether debug logging is on.
func IsDebug() bool {
	return Log.IsLevelEnabled(logrus.DebugLevel)
}
