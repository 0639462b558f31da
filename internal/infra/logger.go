package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Development gets colored console
// output at debug level; other environments write JSON at info level. A
// non-empty level ("debug", "warn", ...) overrides the environment default,
// and APP_ENV=test silences everything.
func NewLogger(appEnv, level string) zerolog.Logger {
	return newLogger(appEnv, level, os.Stdout)
}

// CLILogger is the logger used by the maintenance commands: console output
// on stderr so stdout stays clean for results.
func CLILogger(command string) zerolog.Logger {
	return newLogger("development", os.Getenv("LOG_LEVEL"), os.Stderr).
		With().Str("cmd", command).Logger()
}

func newLogger(appEnv, level string, out io.Writer) zerolog.Logger {
	if appEnv == "test" {
		return zerolog.Nop()
	}
	lvl := zerolog.InfoLevel
	if appEnv == "development" {
		lvl = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(strings.TrimSpace(level)); err == nil && level != "" {
		lvl = parsed
	}

	if appEnv == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "quotestudio").
		Str("env", appEnv).
		Logger()
}
