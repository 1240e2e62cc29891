package logger

import (
	"fmt"
	"strings"
	"sync"
)

type TestLogEntry struct {
	Severity  string
	Message   string
	Arguments []interface{}
}

// Formatted returns the entry message with its arguments applied.
func (e TestLogEntry) Formatted() string {
	if len(e.Arguments) == 0 {
		return e.Message
	}
	return fmt.Sprintf(e.Message, e.Arguments...)
}

type testLogState struct {
	mu      sync.Mutex
	entries []TestLogEntry
}

// TestLogger records log entries in memory for assertions. All loggers
// derived via With or WithPrefix append to the same entry list. Fatal records
// an entry instead of exiting so tests can assert on it.
type TestLogger struct {
	metadata map[string]interface{}
	state    *testLogState
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a new Logger instance useful for testing
func NewTestLogger() *TestLogger {
	return &TestLogger{state: &testLogState{}}
}

// Entries returns a copy of all recorded entries.
func (c *TestLogger) Entries() []TestLogEntry {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	out := make([]TestLogEntry, len(c.state.entries))
	copy(out, c.state.entries)
	return out
}

// Has reports whether an entry with the given severity was recorded whose
// formatted message contains substr.
func (c *TestLogger) Has(severity, substr string) bool {
	for _, e := range c.Entries() {
		if e.Severity == severity && strings.Contains(e.Formatted(), substr) {
			return true
		}
	}
	return false
}

func (c *TestLogger) WithPrefix(prefix string) Logger {
	return c
}

func (c *TestLogger) With(metadata map[string]interface{}) Logger {
	kv := make(map[string]interface{})
	for k, v := range c.metadata {
		kv[k] = v
	}
	for k, v := range metadata {
		kv[k] = v
	}
	return &TestLogger{metadata: kv, state: c.state}
}

func (c *TestLogger) IsLevelEnabled(level LogLevel) bool {
	return true
}

func (c *TestLogger) IsTraceEnabled() bool { return true }

func (c *TestLogger) IsDebugEnabled() bool { return true }

func (c *TestLogger) record(severity string, msg string, args ...interface{}) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.entries = append(c.state.entries, TestLogEntry{severity, msg, args})
}

func (c *TestLogger) Trace(msg string, args ...interface{}) {
	c.record("TRACE", msg, args...)
}

func (c *TestLogger) Debug(msg string, args ...interface{}) {
	c.record("DEBUG", msg, args...)
}

func (c *TestLogger) Info(msg string, args ...interface{}) {
	c.record("INFO", msg, args...)
}

func (c *TestLogger) Warn(msg string, args ...interface{}) {
	c.record("WARNING", msg, args...)
}

func (c *TestLogger) Error(msg string, args ...interface{}) {
	c.record("ERROR", msg, args...)
}

func (c *TestLogger) Fatal(msg string, args ...interface{}) {
	c.record("FATAL", msg, args...)
}
