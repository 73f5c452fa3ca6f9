// Package bootstrap wires configuration, logging, storage and inputs for the commands.
package bootstrap

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"prun-economy-lab/internal/config"
)

// NewLogger builds a zerolog logger from the log section.
func NewLogger(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: log.level: %w", config.ErrInvalidConfig, err)
	}

	out := w
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
