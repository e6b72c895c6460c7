package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mastermind.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, "https://mastermind.darkube.app", cfg.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.ExitGrace)
	assert.Zero(t, cfg.RequestTimeout)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `{
		"base_url": " http://localhost:8080 ",
		"request_timeout": "5s",
		"exit_grace": "500ms",
		"log_level": "DEBUG"
	}`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ExitGrace)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, defaultUA, cfg.UserAgent)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `{"base_url": "http://from-file:1", "user_agent": "file-agent"}`)
	t.Setenv("MASTERMIND_BASE_URL", "http://from-env:2")
	t.Setenv("MASTERMIND_EXIT_GRACE", "3s")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:2", cfg.BaseURL)
	assert.Equal(t, "file-agent", cfg.UserAgent)
	assert.Equal(t, 3*time.Second, cfg.ExitGrace)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed json", body: `{"base_url":`},
		{name: "relative base url", body: `{"base_url": "mastermind.local"}`},
		{name: "negative grace", body: `{"exit_grace": "-1s"}`},
		{name: "negative timeout", body: `{"request_timeout": "-5s"}`},
		{name: "unknown log level", body: `{"log_level": "verbsoe"}`},
		{name: "unknown env log level", body: `{}`, env: map[string]string{"MASTERMIND_LOG_LEVEL": "loud"}},
		{name: "bad env duration", body: `{}`, env: map[string]string{"MASTERMIND_REQUEST_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
