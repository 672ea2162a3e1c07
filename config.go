package excelview

import (
	"fmt"
	"time"
)

const (
	DefaultBatchSize   = 499
	DefaultSettleDelay = 500 * time.Millisecond
)

// Config represents configuration for the sync engine
type Config struct {
	BatchSize   int           // Rows or ids per atomic store operation (default: 499, max: MaxStoreBatch)
	SettleDelay time.Duration // Pause between reaching 100% and returning from Upload (default: 500ms)
}

// DefaultConfig returns the configuration used when New is given nil
func DefaultConfig() *Config {
	return &Config{
		BatchSize:   DefaultBatchSize,
		SettleDelay: DefaultSettleDelay,
	}
}

// Validate checks that the batch size fits within the store limit
func (c *Config) Validate() error {
	if c.BatchSize < 0 || c.BatchSize > MaxStoreBatch {
		return ErrInvalidBatchSize
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle delay must be non-negative")
	}
	return nil
}
