package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger from the given level and format
func Setup(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if err != nil {
		logrus.Warnf("unknown log level %q, using info", level)
	}
}
