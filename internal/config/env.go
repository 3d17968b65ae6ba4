// Package config carries samplegen's environment defaults and named run
// profiles.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds the environment-sourced defaults for the global command line
// flags. Flags always win over the environment.
type Env struct {
	LogLevel    string `env:"SAMPLEGEN_LOG_LEVEL" envDefault:"info"`
	ServiceName string `env:"SAMPLEGEN_SERVICE_NAME" envDefault:"samplegen"`
	// Telemetry selects where run telemetry goes: none, terminal, or an
	// OTLP endpoint such as localhost:4317.
	Telemetry string `env:"SAMPLEGEN_TELEMETRY" envDefault:"none"`
	// DB is the path of the SQLite run log. Empty disables recording.
	DB string `env:"SAMPLEGEN_DB"`
	// Entries and Workers seed the run command defaults. Workers 0 means
	// one per CPU.
	Entries uint64 `env:"SAMPLEGEN_ENTRIES" envDefault:"10000000"`
	Workers int    `env:"SAMPLEGEN_WORKERS" envDefault:"0"`
}

// LoadEnv parses the SAMPLEGEN_* environment variables. On error the
// returned Env still carries whatever parsed cleanly, so callers can warn
// and continue.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}
