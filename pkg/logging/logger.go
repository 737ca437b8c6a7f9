package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// encoder renders one entry into a line, without the trailing newline.
type encoder func(ts time.Time, level Level, msg string, fields []Field) ([]byte, error)

// core is the shared sink of a logger and all of its children.
type core struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	encode encoder
	now    func() time.Time
}

// StreamLogger writes one encoded line per entry to an io.Writer.
// Children created by With share the writer and the level.
type StreamLogger struct {
	core   *core
	fields []Field
}

// JSONLogger writes one JSON object per line.
type JSONLogger = StreamLogger

// NewJSONLogger creates a logger emitting {"time","level","msg","fields"} lines.
func NewJSONLogger(writer io.Writer, level Level) *StreamLogger {
	return newStreamLogger(writer, level, encodeJSON)
}

// NewTextLogger creates a logger emitting "time LEVEL msg key=value" lines.
func NewTextLogger(writer io.Writer, level Level) *StreamLogger {
	return newStreamLogger(writer, level, encodeText)
}

// New creates a logger for the given format.
func New(writer io.Writer, format Format, level Level) *StreamLogger {
	if format == FormatText {
		return NewTextLogger(writer, level)
	}
	return NewJSONLogger(writer, level)
}

// NewDefaultLogger creates a JSON logger that writes to stderr at INFO level
func NewDefaultLogger() *StreamLogger {
	return NewJSONLogger(os.Stderr, InfoLevel)
}

func newStreamLogger(writer io.Writer, level Level, enc encoder) *StreamLogger {
	return &StreamLogger{
		core: &core{writer: writer, level: level, encode: enc, now: time.Now},
	}
}

func (l *StreamLogger) log(level Level, msg string, fields ...Field) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()

	if level < l.core.level {
		return
	}

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	data, err := l.core.encode(l.core.now(), level, msg, all)
	if err != nil {
		fmt.Fprintf(l.core.writer, "[ERROR] Failed to encode log entry: %v\n", err)
		return
	}
	data = append(data, '\n')
	_, _ = l.core.writer.Write(data)
}

func (l *StreamLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *StreamLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *StreamLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *StreamLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// With creates a child logger with the given fields pre-set
func (l *StreamLogger) With(fields ...Field) Logger {
	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &StreamLogger{core: l.core, fields: newFields}
}

// SetLevel sets the minimum log level for this logger and its children
func (l *StreamLogger) SetLevel(level Level) {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	l.core.level = level
}

// GetLevel returns the current log level
func (l *StreamLogger) GetLevel() Level {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	return l.core.level
}

func encodeJSON(ts time.Time, level Level, msg string, fields []Field) ([]byte, error) {
	entry := LogEntry{
		Time:    ts.Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]any, len(fields))
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}
	return json.Marshal(entry)
}

func encodeText(ts time.Time, level Level, msg string, fields []Field) ([]byte, error) {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s", level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	// Later fields override earlier ones, as in the JSON encoding.
	merged := make(map[string]any, len(fields))
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, textValue(merged[k]))
	}
	return []byte(b.String()), nil
}

func textValue(v any) string {
	s := fmt.Sprint(v)
	if v == nil {
		s = "<nil>"
	}
	if strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Global default logger
var (
	defaultLogger Logger
	defaultMu     sync.RWMutex
	once          sync.Once
)

// DefaultLogger returns the global default logger, configured from
// NETBUILDER_LOG_LEVEL and NETBUILDER_LOG_FORMAT on first use.
func DefaultLogger() Logger {
	once.Do(func() {
		level := ParseLevel(os.Getenv("NETBUILDER_LOG_LEVEL"))
		format, err := ParseFormat(os.Getenv("NETBUILDER_LOG_FORMAT"))
		if err != nil {
			format = FormatJSON
		}
		defaultMu.Lock()
		if defaultLogger == nil {
			defaultLogger = New(os.Stderr, format, level)
		}
		defaultMu.Unlock()
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// Elapsed returns the time since the operation started.
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

// End logs the operation at debug level with its duration
func (t *TimedOperation) End(fields ...Field) time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug(t.msg, t.merge(elapsed, fields)...)
	return elapsed
}

// EndWarn logs a rejected operation with its duration and cause
func (t *TimedOperation) EndWarn(err error, fields ...Field) time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Warn(t.msg, append(t.merge(elapsed, fields), Error(err))...)
	return elapsed
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error, fields ...Field) time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Error(t.msg, append(t.merge(elapsed, fields), Error(err))...)
	return elapsed
}

func (t *TimedOperation) merge(elapsed time.Duration, extra []Field) []Field {
	out := make([]Field, 0, len(t.fields)+len(extra)+1)
	out = append(out, t.fields...)
	out = append(out, extra...)
	return append(out, Latency(elapsed))
}
