package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "urldate", "year", "yearmonth"}, config.IgnoreFields)
	assert.Equal(t, "markdown", config.ReportFormat)
	assert.False(t, config.DryRun)
	assert.False(t, config.ExitZeroUsage)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("BIBSYNC_REPORT_FORMAT", "yaml")
	t.Setenv("BIBSYNC_LOG_LEVEL", "debug")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "yaml", config.ReportFormat)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "info", config.LogLevel, "an empty flag keeps the configured level")

	config.UpdateFromFlags(false, true, false, "trace")
	assert.Equal(t, "trace", config.LogLevel)
}
