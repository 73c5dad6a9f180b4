package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements Logger on top of logrus.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter creates a Logger with the given level ("debug", "info",
// "warn", "error") and format ("json" or "text"). Unknown levels fall back to info.
func NewLogrusAdapter(level, format string) Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// NewLogrusAdapterFromLogger wraps an existing logrus.Logger. A nil logger
// gets replaced by a fresh one.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return &LogrusAdapter{
		logger: logger,
		entry:  logrus.NewEntry(logger),
	}
}

// NewDiscardLogger returns a Logger that drops everything. Handy as a default
// for library callers that do not care about logs.
func NewDiscardLogger() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLogrusAdapterFromLogger(logger)
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Debug(msg)
}

func (l *LogrusAdapter) Info(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Info(msg)
}

func (l *LogrusAdapter) Warn(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Warn(msg)
}

func (l *LogrusAdapter) Error(msg string, fields ...Field) {
	l.entry.WithFields(convertFields(fields)).Error(msg)
}

func (l *LogrusAdapter) WithError(err error) Logger {
	return &LogrusAdapter{logger: l.logger, entry: l.entry.WithError(err)}
}

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return &LogrusAdapter{logger: l.logger, entry: l.entry.WithField(key, value)}
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return &LogrusAdapter{logger: l.logger, entry: l.entry.WithFields(convertFields(fields))}
}

func (l *LogrusAdapter) Fatalf(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}

// Writer exposes the underlying output so HTTP middleware can share it.
func (l *LogrusAdapter) Writer() io.Writer {
	return l.logger.Out
}

func convertFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, field := range fields {
		out[field.Key] = field.Value
	}
	return out
}
