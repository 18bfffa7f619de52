package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 50, s.Concurrency)
	assert.Equal(t, 20*time.Second, s.Timeout)
	assert.Equal(t, 90*time.Second, s.BatchDeadline)
	assert.False(t, s.RejectUnknown)
	assert.Nil(t, s.Proxy())
	assert.NoError(t, s.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imgdl.yaml")
	content := `
output_dir: /tmp/out
concurrency: 7
timeout: 5s
batch_deadline: 1m
reject_unknown: true
proxy_type: socks5
proxy_address: 127.0.0.1:1080
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", s.OutputDir)
	assert.Equal(t, 7, s.Concurrency)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, time.Minute, s.BatchDeadline)
	assert.True(t, s.RejectUnknown)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)

	proxy := s.Proxy()
	require.NotNil(t, proxy)
	assert.Equal(t, "socks5://127.0.0.1:1080", proxy.URL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IMGDL_CONCURRENCY", "3")
	t.Setenv("IMGDL_TIMEOUT", "2s")

	path := filepath.Join(t.TempDir(), "imgdl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: 9\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Concurrency)
	assert.Equal(t, 2*time.Second, s.Timeout)
	assert.Equal(t, 90*time.Second, s.BatchDeadline)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *Settings)
		wantErr string
	}{
		{"empty output", func(s *Settings) { s.OutputDir = "" }, "output_dir"},
		{"zero concurrency", func(s *Settings) { s.Concurrency = 0 }, "concurrency"},
		{"negative timeout", func(s *Settings) { s.Timeout = -time.Second }, "timeout"},
		{"zero deadline", func(s *Settings) { s.BatchDeadline = 0 }, "batch_deadline"},
		{"proxy without address", func(s *Settings) { s.ProxyType = "http" }, "proxy_address"},
		{"unknown proxy type", func(s *Settings) { s.ProxyType = "ftp"; s.ProxyAddress = "x:1" }, "proxy_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("url", "https://example.com").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"url":"https://example.com"`)
	assert.Contains(t, out, `"message":"visible"`)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("loud", "json", &buf)
	logger.Info().Msg("still logged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Invalid log level")
	assert.Contains(t, lines[1], "still logged")
}
