package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing backend URL", func(c *Config) { c.BackendURL = "" }, true},
		{"relative backend URL", func(c *Config) { c.BackendURL = "localhost:8000" }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeoutSeconds = -1 }, true},
		{"unknown exporter", func(c *Config) { c.TracingExporter = "jaeger" }, true},
		{"otlp exporter", func(c *Config) { c.TracingExporter = "otlp" }, false},
		{"sampler ratio above one", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Port:                "3000",
				BackendURL:          "http://localhost:8000",
				Env:                 "test",
				TracingExporter:     "stdout",
				TracingSamplerRatio: 1.0,
			}
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, "3000", cfg.Port)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadConfig_BackendURLTrimsTrailingSlash(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("BACKEND_URL")

	os.Setenv("BACKEND_URL", "http://api.example.com:8000/")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com:8000", cfg.BackendURL)
}
