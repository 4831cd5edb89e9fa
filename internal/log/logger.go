// Package log is the application-wide leveled logger. Package-level functions
// write through a shared logger that Configure can replace; Logger values
// carry structured fields added with With.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"fiapo/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single structured key/value attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Option configures a Logger
type Option func(*options)

type options struct {
	out  io.Writer
	json bool
	file string
}

// WithOutput sends log output to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches the formatter to one JSON object per line
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile appends log output to the file at path in addition to the
// configured output.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// Logger writes leveled, structured entries
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

// NewLogger creates a logger. Without options it writes text to stdout.
func NewLogger(opts ...Option) *Logger {
	o := &options{out: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)

	var file *os.File
	out := o.out
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", o.file, err)
		} else {
			file = f
			out = io.MultiWriter(o.out, f)
		}
	}
	base.SetOutput(out)

	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return &Logger{entry: logrus.NewEntry(base), file: file}
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns a logger that adds fields to every entry
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext attaches ctx to entries. No fields are derived from it yet.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), file: l.file}
}

// WithError adds error details as fields
func (l *Logger) WithError(err error) *Logger {
	return l.With(errorFields(err)...)
}

func (l *Logger) Info(msg string)  { l.entry.Info(msg) }
func (l *Logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *Logger) Error(msg string) { l.entry.Error(msg) }

func (l *Logger) Debug(msg string) {
	if isDebug.Load() {
		l.entry.Debug(msg)
	}
}

func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debugf(format, args...)
	}
}

// SetDebug enables or disables debug entries for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// Configure replaces the package-level logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Default returns the package-level logger
func Default() *Logger {
	return logger
}

// LogWithFields returns the package-level logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package-level logger with error details attached
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err with msg at error level
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{
		F("error", err.Error()),
		F("error_kind", errors.KindOf(err).String()),
	}

	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var decodeErr *errors.DecodeError
	if errors.As(err, &decodeErr) {
		if decodeErr.Path() != "" {
			fields = append(fields, F("path", decodeErr.Path()))
		}
		if decodeErr.Page() >= 0 {
			fields = append(fields, F("page", decodeErr.Page()))
		}
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var searchErr *errors.SearchError
	if errors.As(err, &searchErr) && searchErr.Query() != "" {
		fields = append(fields, F("query", searchErr.Query()))
	}
	return fields
}

func sprintf(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Info logs at info level; args format msg when present
func Info(msg string, args ...interface{}) {
	logger.Info(sprintf(msg, args))
}

// Infof logs a formatted message at info level
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs at debug level; args format msg when present
func Debug(msg string, args ...interface{}) {
	logger.Debug(sprintf(msg, args))
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Warn logs at warn level; args format msg when present
func Warn(msg string, args ...interface{}) {
	logger.Warn(sprintf(msg, args))
}

// Warnf logs a formatted message at warn level
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error logs at error level; args format msg when present
func Error(msg string, args ...interface{}) {
	logger.Error(sprintf(msg, args))
}

// Errorf logs a formatted message at error level
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
