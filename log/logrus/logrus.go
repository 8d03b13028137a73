package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/autocache"
)

var _ autocache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every entry with component=autocache.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "autocache")}
}

func (l LogrusLogger) Debug(msg string, f autocache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f autocache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f autocache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f autocache.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f autocache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	return l.E.WithFields(logrus.Fields(f))
}
