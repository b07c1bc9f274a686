package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is a deliberately small, framework-agnostic logging interface.
// Constructors across the module accept it so implementations can be swapped
// without touching callers.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger scoped to a component name.
	With(component string) Logger
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// JSONLogger writes one JSON object per log line. It implements Logger and is
// the default logger for the CLI and the editor server.
type JSONLogger struct {
	mu        *sync.Mutex
	out       io.Writer
	component string
}

// NewJSONLogger creates a JSONLogger writing to out. component is optional
// and is carried on every entry.
func NewJSONLogger(out io.Writer, component string) *JSONLogger {
	if out == nil {
		out = os.Stdout
	}
	return &JSONLogger{mu: &sync.Mutex{}, out: out, component: component}
}

// NewStdoutLogger creates a JSONLogger writing to stdout.
func NewStdoutLogger(component string) *JSONLogger {
	return NewJSONLogger(os.Stdout, component)
}

func (l *JSONLogger) log(level, msg string, fields []Field) {
	entry := struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}{
		Level:     level,
		Msg:       msg,
		Component: l.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]any, len(fields))
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	enc, err := json.Marshal(entry)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		// Fall back to plain formatting if a field value is not marshalable.
		fmt.Fprintf(l.out, "%s %s %v\n", level, msg, fields)
		return
	}
	fmt.Fprintln(l.out, string(enc))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log("debug", msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log("info", msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log("warn", msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log("error", msg, fields) }

func (l *JSONLogger) With(component string) Logger {
	return &JSONLogger{mu: l.mu, out: l.out, component: component}
}

// Nop is a Logger that discards everything. Useful in tests.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}
func (Nop) With(string) Logger     { return Nop{} }
