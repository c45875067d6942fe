package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger with configuration from environment variables.
// TRIAGE_LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
func Init() {
	SetLevel(os.Getenv("TRIAGE_LOG_LEVEL"))

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// SetLevel sets the global log level. Unknown values fall back to info.
// The --log-level server flag routes through here and takes precedence
// over the environment.
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
