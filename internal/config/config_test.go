package config

import (
	"os"
	"path/filepath"
	"testing"

	"whatsappmgr/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"logLevel": "debug",
		"server": {"port": 9090},
		"transport": {"apiBaseUrl": "http://localhost:3000", "apiKey": "secret"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Transport.APIBaseURL)
	assert.Equal(t, "secret", cfg.Transport.APIKey)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"transport": {"apiBaseUrl": "http://localhost:3000"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, constants.DefaultPairingDedupWindowMs, cfg.Pairing.DedupWindowMs)
	assert.Equal(t, constants.DefaultPairingExpiryMs, cfg.Pairing.ExpiryMs)
	assert.Equal(t, constants.DefaultStoreCapacity, cfg.Store.Capacity)
	assert.Equal(t, constants.DefaultQueryLimit, cfg.Store.DefaultQueryLimit)
}

func TestLoadConfig_MissingTransportURL(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingTransportURL)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "negative capacity",
			content: `{"transport": {"apiBaseUrl": "http://x"}, "store": {"capacity": -1}}`,
			wantErr: ErrInvalidCapacity,
		},
		{
			name:    "negative query limit",
			content: `{"transport": {"apiBaseUrl": "http://x"}, "store": {"defaultQueryLimit": -5}}`,
			wantErr: ErrInvalidQueryLimit,
		},
		{
			name:    "negative dedup window",
			content: `{"transport": {"apiBaseUrl": "http://x"}, "pairing": {"dedupWindowMs": -1}}`,
			wantErr: ErrInvalidDedupWindow,
		},
		{
			name:    "negative expiry",
			content: `{"transport": {"apiBaseUrl": "http://x"}, "pairing": {"expiryMs": -1}}`,
			wantErr: ErrInvalidExpiry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := LoadConfig(path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("TRANSPORT_API_URL", "http://override:3000")

	path := writeConfig(t, `{"transport": {"apiBaseUrl": "http://original:3000"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "http://override:3000", cfg.Transport.APIBaseURL)
}
