package logger

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/log"
)

// otelLogger forwards log records to an OpenTelemetry log.Logger.
type otelLogger struct {
	prefixes   []string
	metadata   map[string]log.Value
	logLevel   LogLevel
	otelLogger log.Logger
}

var _ Logger = (*otelLogger)(nil)

func (o *otelLogger) clone() *otelLogger {
	prefixes := make([]string, len(o.prefixes))
	copy(prefixes, o.prefixes)
	metadata := make(map[string]log.Value)
	for k, v := range o.metadata {
		metadata[k] = v
	}
	return &otelLogger{
		prefixes:   prefixes,
		metadata:   metadata,
		logLevel:   o.logLevel,
		otelLogger: o.otelLogger,
	}
}

// WithPrefix will return a new logger with a prefix prepended to the message
func (o *otelLogger) WithPrefix(prefix string) Logger {
	clone := o.clone()
	found := false
	for _, p := range clone.prefixes {
		if p == prefix {
			found = true
			break
		}
	}
	if !found {
		clone.prefixes = append(clone.prefixes, prefix)
	}
	return clone
}

func toLogValue(unknown interface{}) log.Value {
	switch v := unknown.(type) {
	case string:
		return log.StringValue(v)
	case int:
		return log.IntValue(v)
	case int64:
		return log.Int64Value(v)
	case bool:
		return log.BoolValue(v)
	case float64:
		return log.Float64Value(v)
	case []byte:
		return log.BytesValue(v)
	case []interface{}:
		var values []log.Value
		for _, arrayItem := range v {
			values = append(values, toLogValue(arrayItem))
		}
		return log.SliceValue(values...)
	case map[string]interface{}:
		var values []log.KeyValue
		for mapKey, mapUnknownValue := range v {
			values = append(values, log.KeyValue{
				Key:   mapKey,
				Value: toLogValue(mapUnknownValue),
			})
		}
		return log.MapValue(values...)
	default:
		return log.StringValue(fmt.Sprintf("%v", v))
	}
}

// With will return a new logger using metadata as the base context
func (o *otelLogger) With(metadata map[string]interface{}) Logger {
	clone := o.clone()
	for k, v := range metadata {
		clone.metadata[k] = toLogValue(v)
	}
	return clone
}

func (o *otelLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= o.logLevel
}

func (o *otelLogger) IsTraceEnabled() bool {
	return o.IsLevelEnabled(LevelTrace)
}

func (o *otelLogger) IsDebugEnabled() bool {
	return o.IsLevelEnabled(LevelDebug)
}

func (o *otelLogger) logTo(level LogLevel, severity log.Severity, msg string, args ...interface{}) {
	if level < o.logLevel {
		return
	}

	formattedMsg := fmt.Sprintf(msg, args...)
	if len(o.prefixes) > 0 {
		formattedMsg = strings.Join(o.prefixes, " ") + " " + formattedMsg
	}

	now := time.Now()
	record := log.Record{}
	record.SetBody(log.StringValue(formattedMsg))
	record.SetSeverity(severity)
	record.SetSeverityText(severity.String())
	record.SetObservedTimestamp(now)
	record.SetTimestamp(now)
	for k, v := range o.metadata {
		record.AddAttributes(log.KeyValue{Key: k, Value: v})
	}

	o.otelLogger.Emit(context.Background(), record)
}

// Trace level logging
func (o *otelLogger) Trace(msg string, args ...interface{}) {
	o.logTo(LevelTrace, log.SeverityTrace, msg, args...)
}

// Debug level logging
func (o *otelLogger) Debug(msg string, args ...interface{}) {
	o.logTo(LevelDebug, log.SeverityDebug, msg, args...)
}

// Info level logging
func (o *otelLogger) Info(msg string, args ...interface{}) {
	o.logTo(LevelInfo, log.SeverityInfo, msg, args...)
}

// Warning level logging
func (o *otelLogger) Warn(msg string, args ...interface{}) {
	o.logTo(LevelWarn, log.SeverityWarn, msg, args...)
}

// Error level logging
func (o *otelLogger) Error(msg string, args ...interface{}) {
	o.logTo(LevelError, log.SeverityError, msg, args...)
}

// Fatal level logging and exit with code 1
func (o *otelLogger) Fatal(msg string, args ...interface{}) {
	o.logTo(LevelError, log.SeverityError, msg, args...)
	os.Exit(1)
}

// NewOtelLogger returns a Logger that emits records through the given
// OpenTelemetry logger.
func NewOtelLogger(otelsLogger log.Logger, level LogLevel) Logger {
	return &otelLogger{
		otelLogger: otelsLogger,
		logLevel:   level,
	}
}
