package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SAMPLEGEN_LOG_LEVEL", "debug")
	t.Setenv("SAMPLEGEN_ENTRIES", "123")
	t.Setenv("SAMPLEGEN_WORKERS", "8")
	t.Setenv("SAMPLEGEN_DB", "/tmp/runs.db")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", e.LogLevel)
	assert.Equal(t, uint64(123), e.Entries)
	assert.Equal(t, 8, e.Workers)
	assert.Equal(t, "/tmp/runs.db", e.DB)
}

func TestLoadEnvInvalidValue(t *testing.T) {
	t.Setenv("SAMPLEGEN_ENTRIES", "not-a-number")
	_, err := LoadEnv()
	require.Error(t, err)
}
