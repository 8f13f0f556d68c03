// Package logging sets up the structured logger.
package logging

import (
	"io"
	"log/slog"

	"github.com/jjtimmons/seqcmp/config"
)

// New returns a logger writing to w at the configured level and format.
func New(w io.Writer, c config.LogConfig) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
