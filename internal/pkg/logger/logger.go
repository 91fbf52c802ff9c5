package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the fields every line of this service carries.
type Logger struct {
	*logrus.Logger
	service string
}

// New builds a JSON logger. level is one of debug, info, warn, error;
// anything else falls back to info.
func New(service, level string) *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(level))

	return &Logger{Logger: log, service: service}
}

// Discard is used by tests and tools that do not want output.
func Discard() *Logger {
	l := New("test", "error")
	l.SetOutput(io.Discard)
	return l
}

func (l *Logger) base() *logrus.Entry {
	return l.WithField("service", l.service)
}

// Component returns an entry tagged with the module name.
func (l *Logger) Component(name string) *logrus.Entry {
	return l.base().WithField("component", name)
}

func (l *Logger) WithRequestID(requestID string) *logrus.Entry {
	return l.base().WithField("request_id", requestID)
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
