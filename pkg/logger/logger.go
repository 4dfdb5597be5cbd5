package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the structured application logger.
type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: cfg.TimeFormat}
	}

	zl := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}, nil
}

// NewWriter builds a logger on an arbitrary writer (tests, CLI tail output).
func NewWriter(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying the given fields on every entry.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = f.addToContext(ctx)
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(l.zl.Error(), msg, fields) }

func (l *Logger) emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		f.AddTo(event)
	}
	event.Msg(msg)
}

// Field is one structured key/value pair.
type Field interface {
	AddTo(event *zerolog.Event)
	addToContext(ctx zerolog.Context) zerolog.Context
}

type stringField struct{ key, value string }

func (f stringField) AddTo(e *zerolog.Event) { e.Str(f.key, f.value) }
func (f stringField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Str(f.key, f.value)
}

type int64Field struct {
	key   string
	value int64
}

func (f int64Field) AddTo(e *zerolog.Event) { e.Int64(f.key, f.value) }
func (f int64Field) addToContext(c zerolog.Context) zerolog.Context {
	return c.Int64(f.key, f.value)
}

type floatField struct {
	key   string
	value float64
}

func (f floatField) AddTo(e *zerolog.Event) { e.Float64(f.key, f.value) }
func (f floatField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Float64(f.key, f.value)
}

type boolField struct {
	key   string
	value bool
}

func (f boolField) AddTo(e *zerolog.Event) { e.Bool(f.key, f.value) }
func (f boolField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Bool(f.key, f.value)
}

type errorField struct{ err error }

func (f errorField) AddTo(e *zerolog.Event) { e.Err(f.err) }
func (f errorField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Err(f.err)
}

type anyField struct {
	key   string
	value interface{}
}

func (f anyField) AddTo(e *zerolog.Event) { e.Interface(f.key, f.value) }
func (f anyField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Interface(f.key, f.value)
}

// --- Field constructors ---

func String(key, value string) Field { return stringField{key: key, value: value} }

func Int(key string, value int) Field { return int64Field{key: key, value: int64(value)} }

func Int64(key string, value int64) Field { return int64Field{key: key, value: value} }

func Uint64(key string, value uint64) Field { return int64Field{key: key, value: int64(value)} }

func Float64(key string, value float64) Field { return floatField{key: key, value: value} }

func Bool(key string, value bool) Field { return boolField{key: key, value: value} }

func Error(err error) Field { return errorField{err: err} }

func Any(key string, value interface{}) Field { return anyField{key: key, value: value} }

// Duration logs milliseconds.
func Duration(key string, value time.Duration) Field {
	return int64Field{key: key, value: int64(value / time.Millisecond)}
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}
