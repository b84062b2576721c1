package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := ConfigFromEnv(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "LinearRegression", cfg.Model)
	assert.Equal(t, "SyntheticRegression", cfg.Data)
	assert.False(t, cfg.ParseEnv)
	assert.Empty(t, cfg.DefaultConfigFiles)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := ConfigFromEnv(map[string]string{
		"TRAINCTL_LOG_LEVEL":            "debug",
		"TRAINCTL_LOG_FORMAT":           "json",
		"TRAINCTL_DATA":                 "",
		"TRAINCTL_PARSE_ENV":            "true",
		"TRAINCTL_DEFAULT_CONFIG_FILES": "~/.trainctl.yaml,./trainctl.yaml",
	})

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.ParseEnv)
	assert.Equal(t, []string{"~/.trainctl.yaml", "./trainctl.yaml"}, cfg.DefaultConfigFiles)
	assert.Len(t, cfg.Options(), 4)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	t.Parallel()
	testCases := map[string]map[string]string{
		"bad level":  {"TRAINCTL_LOG_LEVEL": "loud"},
		"bad format": {"TRAINCTL_LOG_FORMAT": "xml"},
		"bad bool":   {"TRAINCTL_PARSE_ENV": "maybe"},
	}

	for name, environ := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ConfigFromEnv(environ)
			assert.Error(t, err)
		})
	}
}
