package pipeline

import (
	"errors"
	"runtime"
)

// Config holds configuration for one pipeline pass.
type Config struct {
	// Entries is the number of work items; their identifiers are
	// 0 through Entries-1. Zero is a valid empty pass.
	Entries uint64
	// Workers is the number of worker goroutines, one slot each.
	Workers int
	// BatchSize is how many consecutive entries a worker claims at a time.
	BatchSize uint64
}

// Validate checks the pipeline configuration for usable values.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.New("workers must be positive")
	}
	if c.BatchSize < 1 {
		return errors.New("batch size must be positive")
	}
	return nil
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Entries:   10_000_000,
		Workers:   runtime.NumCPU(),
		BatchSize: 4096,
	}
}
