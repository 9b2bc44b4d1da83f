package main

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/coachpo/orientwire/internal/observability"
)

// consoleLogger adapts zerolog to the client's logging seam.
type consoleLogger struct {
	log zerolog.Logger
}

func newLogger(out io.Writer, verbose, quiet bool) *consoleLogger {
	level := zerolog.InfoLevel
	switch {
	case quiet:
		level = zerolog.WarnLevel
	case verbose:
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
	return &consoleLogger{log: zl}
}

func (l *consoleLogger) Debug(msg string, fields ...observability.Field) {
	l.emit(l.log.Debug(), msg, fields)
}

func (l *consoleLogger) Info(msg string, fields ...observability.Field) {
	l.emit(l.log.Info(), msg, fields)
}

func (l *consoleLogger) Warn(msg string, fields ...observability.Field) {
	l.emit(l.log.Warn(), msg, fields)
}

func (l *consoleLogger) Error(msg string, fields ...observability.Field) {
	l.emit(l.log.Error(), msg, fields)
}

func (l *consoleLogger) emit(ev *zerolog.Event, msg string, fields []observability.Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}
