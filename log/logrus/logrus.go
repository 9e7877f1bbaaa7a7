// Package logrus adapts sirupsen/logrus to the polycache Logger interface.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/polycache/polycache"
)

type Logger struct{ E *logrus.Entry }

var _ polycache.Logger = Logger{}

func (l Logger) Debug(msg string, f polycache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l Logger) Info(msg string, f polycache.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f polycache.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f polycache.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
