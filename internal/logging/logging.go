// Package logging builds the zerolog.Logger handed to every component.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.elastic.co/ecszerolog"
)

const appName = "dbf-pump"

// New returns a logger writing to w. format is console, json or ecs;
// level is any zerolog level name, empty meaning info.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var logger zerolog.Logger
	switch strings.ToLower(format) {
	case "", "console":
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}).With().Timestamp().Logger()
	case "json":
		logger = zerolog.New(w).With().Timestamp().Logger()
	case "ecs":
		// ECS output for Elasticsearch / Filebeat, carries its own @timestamp
		logger = ecszerolog.New(w)
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (want console, json or ecs)", format)
	}

	return logger.Level(lvl).With().Str("app", appName).Logger(), nil
}
