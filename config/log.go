package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger creates a zerolog.Logger writing to w.
func (cfg *Config) Logger(w io.Writer) (zerolog.Logger, error) {

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parsing log level: %w", err)
	}

	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
