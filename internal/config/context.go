package config

import (
	"context"
	"log/slog"
)

// current holds the configuration resolved by the root command so that
// subcommands can reach it without threading it through every call.
var current *Config

// SetCurrent records the active configuration.
func SetCurrent(c *Config) { current = c }

// Current returns the active configuration, or nil before Load has run.
func Current() *Config { return current }

type loggerKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the context, or a discard logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
