// internal/logger/logger.go
package logger

import (
    "os"
    "time"

    "github.com/rs/zerolog"
)

// New builds the application logger. format "console" gives human-readable
// output for development; anything else is JSON for production.
func New(level, format string) zerolog.Logger {
    lvl, err := zerolog.ParseLevel(level)
    if err != nil {
        lvl = zerolog.InfoLevel
    }

    var logger zerolog.Logger
    if format == "console" || format == "text" {
        output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
        logger = zerolog.New(output).With().Timestamp().Logger()
    } else {
        logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
    }

    return logger.Level(lvl)
}

// FromEnv reads LOG_LEVEL and LOG_FORMAT, defaulting to info/json.
func FromEnv() zerolog.Logger {
    return New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}
