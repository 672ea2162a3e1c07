package sqlite

import "errors"

// ErrMissingPath is returned when no database path is configured
var ErrMissingPath = errors.New("sqlite database path is required")

// Config holds configuration for the SQLite store
type Config struct {
	Path string // Database file; ":memory:" keeps everything in process
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrMissingPath
	}
	return nil
}
