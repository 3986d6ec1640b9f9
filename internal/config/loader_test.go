package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so tests see only file values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WHATSGW_CONFIG",
		"WHATSGW_LISTEN",
		"WHATSGW_LOG_LEVEL",
		"WHATSAPP_WEBHOOK_SECRET",
		"N8N_WHATSAPP_MESSAGE_WEBHOOK_URL",
		"N8N_ALERT_WEBHOOK_URL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "whatsgw", cfg.Service.Name)
	assert.Equal(t, "info", cfg.Service.LogLevel)
	assert.Equal(t, "127.0.0.1:8090", cfg.Listen)
	assert.Equal(t, "/webhook/whatsapp", cfg.Webhook.Path)
	assert.Equal(t, "x-webhook-signature", cfg.Webhook.SignatureHeader)
	assert.Equal(t, "", cfg.Webhook.Secret)
	assert.Equal(t, "10s", cfg.Forward.Timeout)
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
service:
  name: whatsgw
  log_level: debug
listen: "0.0.0.0:9000"
webhook:
  path: /hooks/wa
  signature_header: x-custom-sig
  secret: file-secret
  max_body_size: 2MB
forward:
  message_url: http://n8n.local/msg
  alert_url: http://n8n.local/alert
  timeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Service.LogLevel)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "/hooks/wa", cfg.Webhook.Path)
	assert.Equal(t, "x-custom-sig", cfg.Webhook.SignatureHeader)
	assert.Equal(t, "file-secret", cfg.Webhook.Secret)
	assert.Equal(t, "2MB", cfg.Webhook.MaxBodySize)
	assert.Equal(t, "http://n8n.local/msg", cfg.Forward.MessageURL)
	assert.Equal(t, "http://n8n.local/alert", cfg.Forward.AlertURL)
	assert.Equal(t, "5s", cfg.Forward.Timeout)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
webhook:
  secret: file-secret
forward:
  message_url: http://file.local/msg
`)

	t.Setenv("WHATSAPP_WEBHOOK_SECRET", "env-secret")
	t.Setenv("N8N_WHATSAPP_MESSAGE_WEBHOOK_URL", "http://env.local/msg")
	t.Setenv("N8N_ALERT_WEBHOOK_URL", "http://env.local/alert")
	t.Setenv("WHATSGW_LISTEN", "127.0.0.1:7777")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Webhook.Secret)
	assert.Equal(t, "http://env.local/msg", cfg.Forward.MessageURL)
	assert.Equal(t, "http://env.local/alert", cfg.Forward.AlertURL)
	assert.Equal(t, "127.0.0.1:7777", cfg.Listen)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
webhook:
  secret: "${TEST_WHATSGW_SECRET}"
`)

	t.Setenv("TEST_WHATSGW_SECRET", "interp-secret")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "interp-secret", cfg.Webhook.Secret)
}

func TestLoad_UnsetInterpolationDisablesFeature(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
webhook:
  secret: "${TEST_WHATSGW_UNSET_VAR}"
`)

	os.Unsetenv("TEST_WHATSGW_UNSET_VAR")
	cfg, err := Load(path)
	require.NoError(t, err)
	// Unset var resolves to empty: signature verification disabled, not an error.
	assert.Equal(t, "", cfg.Webhook.Secret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad log level", content: "service:\n  log_level: noisy\n"},
		{name: "bad webhook path", content: "webhook:\n  path: no-slash\n"},
		{name: "bad body size", content: "webhook:\n  max_body_size: lots\n"},
		{name: "negative timeout", content: "forward:\n  timeout: -1s\n"},
		{name: "not yaml", content: "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseBodySize(t *testing.T) {
	tests := []struct {
		size    string
		want    int64
		wantErr bool
	}{
		{size: "", want: DefaultMaxBodySize},
		{size: "1048576", want: 1048576},
		{size: "2KB", want: 2048},
		{size: "1MB", want: 1048576},
		{size: "1GB", want: 1073741824},
		{size: "junk", wantErr: true},
		{size: "-5", wantErr: true},
		{size: "0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			got, err := ParseBodySize(tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		timeout string
		want    time.Duration
		wantErr bool
	}{
		{timeout: "", want: DefaultForwardTimeout},
		{timeout: "5s", want: 5 * time.Second},
		{timeout: "1m30s", want: 90 * time.Second},
		{timeout: "-1s", wantErr: true},
		{timeout: "0s", wantErr: true},
		{timeout: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			got, err := ParseTimeout(tt.timeout)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
