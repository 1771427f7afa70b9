package logger

import (
	"bytes"
	"io"
	"os"

	"github.com/nahidhasan98/changed-files/internal/taskcmd"
	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger
type Logger struct {
	logger zerolog.Logger
}

// New creates a new logger instance writing to stdout
func New(level, format string) *Logger {
	return NewWithWriter(level, format, os.Stdout)
}

// NewWithWriter creates a logger writing to out.
//
// Formats:
//   - "text": human readable console output
//   - "json": one JSON object per line
//   - "azure": console output wrapped in ##vso[task.debug] commands, shown by
//     the agent only when system.debug is enabled
func NewWithWriter(level, format string, out io.Writer) *Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}

	var output io.Writer = out
	switch format {
	case "text":
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	case "azure":
		output = zerolog.ConsoleWriter{
			Out:          &debugCommandWriter{out: out},
			NoColor:      true,
			PartsExclude: []string{zerolog.TimestampFieldName},
		}
	}

	logger := zerolog.New(output).Level(logLevel).With().Timestamp().Logger()

	return &Logger{logger: logger}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

// With creates a child logger with additional fields
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// DebugEnabled reports whether debug messages are emitted
func (l *Logger) DebugEnabled() bool {
	return l.logger.GetLevel() <= zerolog.DebugLevel
}

// debugCommandWriter turns every rendered log line into a task.debug command.
type debugCommandWriter struct {
	out io.Writer
}

func (w *debugCommandWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if _, err := io.WriteString(w.out, taskcmd.Debug(string(line))+"\n"); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
