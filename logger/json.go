package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// JSONLogEntry defines one structured log line, suitable for log shippers.
type JSONLogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// String renders the entry as a single JSON line.
func (e JSONLogEntry) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		log.Printf("json.Marshal: %v", err)
	}
	return string(out)
}

type jsonLogger struct {
	metadata  map[string]interface{}
	component string
	logLevel  LogLevel
	out       io.Writer
	mu        *sync.Mutex
	ts        *time.Time // for unit testing
}

var _ Logger = (*jsonLogger)(nil)

func (c *jsonLogger) clone() *jsonLogger {
	metadata := make(map[string]interface{})
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &jsonLogger{
		metadata:  metadata,
		component: c.component,
		logLevel:  c.logLevel,
		out:       c.out,
		mu:        c.mu,
		ts:        c.ts,
	}
}

// WithPrefix will return a new logger with a prefix recorded as the component
func (c *jsonLogger) WithPrefix(prefix string) Logger {
	clone := c.clone()
	if clone.component == "" {
		clone.component = prefix
	} else if !strings.Contains(clone.component, prefix) {
		clone.component = clone.component + " " + prefix
	}
	return clone
}

func (c *jsonLogger) With(metadata map[string]interface{}) Logger {
	clone := c.clone()
	for k, v := range metadata {
		clone.metadata[k] = v
	}
	if comp, ok := clone.metadata["component"].(string); ok {
		clone.component = comp
		delete(clone.metadata, "component")
	}
	return clone
}

func (c *jsonLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.logLevel
}

func (c *jsonLogger) IsTraceEnabled() bool {
	return c.IsLevelEnabled(LevelTrace)
}

func (c *jsonLogger) IsDebugEnabled() bool {
	return c.IsLevelEnabled(LevelDebug)
}

func (c *jsonLogger) logTo(level LogLevel, severity string, msg string, args ...interface{}) {
	if level < c.logLevel {
		return
	}
	_msg := msg
	if len(args) > 0 {
		_msg = fmt.Sprintf(msg, args...)
	}
	entry := JSONLogEntry{
		Timestamp: time.Now(),
		Severity:  severity,
		Message:   _msg,
		Component: c.component,
		Metadata:  c.metadata,
	}
	if c.ts != nil {
		entry.Timestamp = *c.ts
	}
	buf, _ := json.Marshal(entry)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.out.Write(append(buf, '\n')); err != nil {
		log.Printf("log write: %v", err)
	}
}

func (c *jsonLogger) Trace(msg string, args ...interface{}) {
	c.logTo(LevelTrace, "TRACE", msg, args...)
}

func (c *jsonLogger) Debug(msg string, args ...interface{}) {
	c.logTo(LevelDebug, "DEBUG", msg, args...)
}

func (c *jsonLogger) Info(msg string, args ...interface{}) {
	c.logTo(LevelInfo, "INFO", msg, args...)
}

func (c *jsonLogger) Warn(msg string, args ...interface{}) {
	c.logTo(LevelWarn, "WARNING", msg, args...)
}

func (c *jsonLogger) Error(msg string, args ...interface{}) {
	c.logTo(LevelError, "ERROR", msg, args...)
}

func (c *jsonLogger) Fatal(msg string, args ...interface{}) {
	c.logTo(LevelError, "ERROR", msg, args...)
	os.Exit(1)
}

// NewJSONLogger returns a Logger that writes one JSON object per line to
// stderr. With no explicit level, the level comes from the environment.
func NewJSONLogger(levels ...LogLevel) Logger {
	level := GetLevelFromEnv()
	if len(levels) > 0 {
		level = levels[0]
	}
	return &jsonLogger{logLevel: level, out: os.Stderr, mu: &sync.Mutex{}}
}

// NewJSONLoggerWithWriter returns a Logger that writes one JSON object per
// line to the given writer.
func NewJSONLoggerWithWriter(out io.Writer, level LogLevel) Logger {
	return &jsonLogger{logLevel: level, out: out, mu: &sync.Mutex{}}
}
