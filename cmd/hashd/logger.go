// logger.go - Structured logging for the hashing daemon
package main

import (
	"io"
	"os"

	"github.com/go-errors/errors"
	"github.com/rs/zerolog"
)

// Logger writes leveled messages to the console, an optional log file and, for
// WARN and above, an optional audit file.
type Logger struct {
	log   zerolog.Logger
	audit *zerolog.Logger
	files []*os.File
}

// NewLogger creates a new logger instance writing to stderr
func NewLogger(level string, logFile string, auditFile string) (*Logger, error) {
	return newLogger(level, logFile, auditFile, os.Stderr)
}

func newLogger(level string, logFile string, auditFile string, console io.Writer) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	l := &Logger{}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: "2006-01-02 15:04:05"}}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, errors.WrapPrefix(err, "failed to open log file", 0)
		}
		l.files = append(l.files, file)
		writers = append(writers, file)
	}

	if auditFile != "" {
		file, err := os.OpenFile(auditFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			l.Close()
			return nil, errors.WrapPrefix(err, "failed to open audit file", 0)
		}
		l.files = append(l.files, file)
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: file},
			Level:  zerolog.WarnLevel,
		})
		audit := zerolog.New(file).With().Timestamp().Str("type", "audit").Logger()
		l.audit = &audit
	}

	l.log = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	return l, nil
}

// Zerolog returns the underlying logger for packages that log through zerolog.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.log
}

// Close closes the logger and its files
func (l *Logger) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.files = nil
	return first
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

// Audit logs an audit event. It is a no-op without an audit file.
func (l *Logger) Audit(event string, details map[string]interface{}) {
	if l.audit == nil {
		return
	}
	l.audit.Log().Str("event", event).Fields(details).Msg("audit")
}
