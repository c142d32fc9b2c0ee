package logging

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string onto a Level; unknown values fall back to
// info.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "warn", "WARN", "warning":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger defines a minimal, printf-style logging contract.
//
// Components depend on this interface so tests can capture log records
// without touching process streams.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

// sinkLogger writes formatted records to an explicit sink. The sink is
// injected at construction; there is no hidden process-wide singleton.
type sinkLogger struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	component string
}

// New creates a logger that writes to out, filtering records below level.
func New(out io.Writer, level Level, component string) Logger {
	if out == nil {
		out = io.Discard
	}
	return &sinkLogger{out: out, level: level, component: component}
}

// NewComponentLogger creates a stderr logger scoped to a component at Info level.
func NewComponentLogger(component string) Logger {
	return New(os.Stderr, LevelInfo, component)
}

func (l *sinkLogger) log(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	component := l.component
	if component == "" {
		component = "SWARM"
	}
	// Format: 2025-09-30 12:34:56 [INFO] [Component] - Message
	line := fmt.Sprintf("%s [%s] [%s] - %s\n",
		time.Now().Format("2006-01-02 15:04:05"), level, component,
		fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, line)
}

func (l *sinkLogger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *sinkLogger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *sinkLogger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *sinkLogger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

type multiLogger struct {
	loggers []Logger
}

// Multi returns a logger fan-out that calls every non-nil logger in order.
func Multi(loggers ...Logger) Logger {
	flattened := make([]Logger, 0, len(loggers))
	for _, logger := range loggers {
		if IsNil(logger) {
			continue
		}
		if ml, ok := logger.(*multiLogger); ok {
			flattened = append(flattened, ml.loggers...)
			continue
		}
		flattened = append(flattened, logger)
	}
	if len(flattened) == 0 {
		return Nop()
	}
	if len(flattened) == 1 {
		return flattened[0]
	}
	return &multiLogger{loggers: flattened}
}

func (l *multiLogger) Debug(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Debug(format, args...)
	}
}

func (l *multiLogger) Info(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Info(format, args...)
	}
}

func (l *multiLogger) Warn(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Warn(format, args...)
	}
}

func (l *multiLogger) Error(format string, args ...any) {
	for _, logger := range l.loggers {
		logger.Error(format, args...)
	}
}
