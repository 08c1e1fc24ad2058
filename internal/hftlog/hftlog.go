// Package hftlog is the structured logging wrapper shared by the
// cmd/ entry points. Adapted from exchange-common/pkg/logger's
// zerolog wrapper, with the request-tracing context plumbing dropped
// -- there is no inbound request to trace inside a single-process
// backtest run.
package hftlog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
}

// Logger is a component-scoped structured logger.
type Logger struct {
	logger zerolog.Logger
}

// New builds a Logger tagged with component, writing to w (stdout if nil).
func New(component string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	l := zerolog.New(w).With().
		Timestamp().
		Str("component", component).
		Logger()
	return &Logger{logger: l}
}

func (l *Logger) Debug(msg string) { l.logger.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.logger.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.logger.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.logger.Error().Msg(msg) }

// Infof logs msg with additional structured fields.
func (l *Logger) Infof(msg string, fields map[string]interface{}) {
	ev := l.logger.Info()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// Warnf logs msg with additional structured fields.
func (l *Logger) Warnf(msg string, fields map[string]interface{}) {
	ev := l.logger.Warn()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// Errorf logs msg with additional structured fields.
func (l *Logger) Errorf(msg string, fields map[string]interface{}) {
	ev := l.logger.Error()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// WithError returns a derived Logger with an err field attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{logger: l.logger.With().Err(err).Logger()}
}

// WithField returns a derived Logger with one extra field attached.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}
