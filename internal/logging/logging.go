// Package logging provides the structured, component-tagged logger used
// across the engine.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// base is the process-wide logrus instance. Configured once from env at
// startup; every component logger derives from it via WithField.
var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel adjusts the process-wide log level (e.g. from LOG_LEVEL env var).
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	base.SetLevel(lvl)
}

// For returns a logger tagged with the given component, matching the
// "[component]" prefix convention the engine's logs expose.
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}
