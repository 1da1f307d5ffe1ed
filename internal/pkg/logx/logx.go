/*
Package logx provides a structured logging wrapper based on zerolog.

It is responsible for initializing the global logger, configuring the output format
(JSON or console) and level from the environment, handing out per-component child loggers,
and providing key-value helpers for the Info, Warn, Error, and Fatal levels.
*/
package logx

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger initializes the global zerolog instance.
// Development uses a colored ConsoleWriter on stderr and defaults to Debug; otherwise JSON on
// stdout at Info. A non-empty level ("debug", "warn", ...) overrides the default; an unknown
// level is reported and ignored.
func InitGlobalLogger(isDevelopment bool, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	defaultLevel := zerolog.InfoLevel

	if isDevelopment {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		defaultLevel = zerolog.DebugLevel
	}

	logger := zerolog.New(out).With().Timestamp().Caller().Logger().Level(defaultLevel)

	if level = strings.TrimSpace(level); level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			logger.Warn().Str("log_level", level).Msg("Unknown log level, keeping default.")
		} else {
			logger = logger.Level(parsed)
		}
	}

	log.Logger = logger
}

// Logger returns a pointer to the global zerolog.Logger instance.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// Discard silences the global logger. Tests use it to keep output readable.
func Discard() {
	log.Logger = zerolog.Nop()
}

// emit attaches the key-value fields to ev and writes it. An odd field list cannot be
// paired, so it is dropped and reported instead of letting zerolog mis-key the values.
func emit(ev *zerolog.Event, msg string, fields []any) {
	if len(fields)%2 != 0 {
		Logger().Warn().
			Int("fields_count", len(fields)).
			Str("dropped_for", msg).
			Msg("Odd number of log fields, fields ignored.")
		fields = nil
	}

	ev.Fields(fields).CallerSkipFrame(2).Msg(msg)
}

// Info records msg at the Info level with optional key-value pairs.
func Info(msg string, fields ...any) {
	emit(Logger().Info(), msg, fields)
}

// Warn records msg at the Warn level with optional key-value pairs.
func Warn(msg string, fields ...any) {
	emit(Logger().Warn(), msg, fields)
}

// Error records err and msg at the Error level with optional key-value pairs.
func Error(err error, msg string, fields ...any) {
	emit(Logger().Error().Err(err), msg, fields)
}

// Fatal records err and msg at the Fatal level, then exits the process with status 1.
func Fatal(err error, msg string, fields ...any) {
	emit(Logger().Fatal().Err(err), msg, fields)
}
