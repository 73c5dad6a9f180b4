// Package logging decouples the application from the concrete logging library.
// Components receive a Logger through their constructors; production code uses
// the logrus-backed adapter and tests use MockLogger.
package logging

// Logger is the structured logger used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err.
	WithError(err error) Logger

	// WithField returns a child logger carrying a single key/value pair.
	WithField(key string, value interface{}) Logger

	// WithFields returns a child logger carrying all fields.
	WithFields(fields ...Field) Logger

	// Fatalf logs and terminates the process. Only commands call it.
	Fatalf(msg string, args ...interface{})
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
