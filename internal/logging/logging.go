// Package logging wraps logrus behind a small interface so the rest of the
// module depends on a contract, not a concrete library, per SPEC_FULL.md's
// ambient-stack section. Grounded on the teacher's pkg/core.Logger
// interface (Infof/Warnf/Errorf), backed here by sirupsen/logrus instead of
// the teacher's bare fmt.Printf implementation.
package logging

import (
	"github.com/sirupsen/logrus"
)

// Logger is the contract every package in this module logs through.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New builds a Logger backed by a logrus.Logger at the given level.
func New(level logrus.Level) Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

// noop discards every call; used as the zero-value default so callers never
// need a nil check before logging.
type noop struct{}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noop{} }

func (noop) Infof(string, ...interface{})          {}
func (noop) Warnf(string, ...interface{})          {}
func (noop) Errorf(string, ...interface{})         {}
func (n noop) WithField(string, interface{}) Logger { return n }
