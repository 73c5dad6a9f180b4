package logging

import (
	"fmt"
	"sync"
)

// MockLogger records entries in memory for assertions in tests. Child loggers
// created with With* share the parent's entry list.
type MockLogger struct {
	sink   *mockSink
	fields []Field
	err    error
}

type mockSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &mockSink{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	if m.sink == nil {
		m.sink = &mockSink{}
	}
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = append(m.sink.entries, LogEntry{Level: level, Message: msg, Fields: all, Error: m.err})
}

func (m *MockLogger) child(fields []Field, err error) *MockLogger {
	if m.sink == nil {
		m.sink = &mockSink{}
	}
	all := make([]Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)
	return &MockLogger{sink: m.sink, fields: all, err: err}
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// Fatalf records a FATAL entry. It does not exit.
func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

func (m *MockLogger) WithError(err error) Logger {
	return m.child(nil, err)
}

func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.child([]Field{{Key: key, Value: value}}, m.err)
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	return m.child(fields, m.err)
}

// Entries returns a copy of every captured entry.
func (m *MockLogger) Entries() []LogEntry {
	if m.sink == nil {
		return nil
	}
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	out := make([]LogEntry, len(m.sink.entries))
	copy(out, m.sink.entries)
	return out
}

// EntriesByLevel returns captured entries of one level.
func (m *MockLogger) EntriesByLevel(level string) []LogEntry {
	var out []LogEntry
	for _, entry := range m.Entries() {
		if entry.Level == level {
			out = append(out, entry)
		}
	}
	return out
}

// HasEntry reports whether an entry with this level and message was captured.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, entry := range m.Entries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}
