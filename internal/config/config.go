package config

import (
	"encoding/json"
	"os"
	"strconv"

	"whatsappmgr/internal/constants"
	"whatsappmgr/internal/models"
)

var (
	ErrMissingTransportURL = models.ConfigError{Message: "missing transport API base URL"}
	ErrInvalidCapacity     = models.ConfigError{Message: "store capacity must be positive"}
	ErrInvalidQueryLimit   = models.ConfigError{Message: "default query limit must be positive"}
	ErrInvalidDedupWindow  = models.ConfigError{Message: "pairing dedup window must be positive"}
	ErrInvalidExpiry       = models.ConfigError{Message: "pairing expiry must be positive"}
)

// LoadConfig reads, defaults, and validates the application configuration
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Defaults returns a configuration populated entirely from defaults.
// Used when no config file is supplied.
func Defaults() *models.Config {
	var config models.Config
	applyDefaults(&config)
	applyEnvironmentOverrides(&config)
	return &config
}

func applyDefaults(c *models.Config) {
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec == 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Pairing.DedupWindowMs == 0 {
		c.Pairing.DedupWindowMs = constants.DefaultPairingDedupWindowMs
	}
	if c.Pairing.ExpiryMs == 0 {
		c.Pairing.ExpiryMs = constants.DefaultPairingExpiryMs
	}
	if c.Pairing.QRImageSize == 0 {
		c.Pairing.QRImageSize = constants.DefaultQRImageSize
	}
	if c.Store.Capacity == 0 {
		c.Store.Capacity = constants.DefaultStoreCapacity
	}
	if c.Store.DefaultQueryLimit == 0 {
		c.Store.DefaultQueryLimit = constants.DefaultQueryLimit
	}
	if c.Transport.TimeoutSec == 0 {
		c.Transport.TimeoutSec = constants.DefaultHTTPTimeoutSec
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if url := os.Getenv("TRANSPORT_API_URL"); url != "" {
		c.Transport.APIBaseURL = url
	}
	if key := os.Getenv("TRANSPORT_API_KEY"); key != "" {
		c.Transport.APIKey = key
	}
}

func validate(c *models.Config) error {
	if c.Transport.APIBaseURL == "" {
		return ErrMissingTransportURL
	}
	if c.Store.Capacity < 0 {
		return ErrInvalidCapacity
	}
	if c.Store.DefaultQueryLimit < 0 {
		return ErrInvalidQueryLimit
	}
	if c.Pairing.DedupWindowMs < 0 {
		return ErrInvalidDedupWindow
	}
	if c.Pairing.ExpiryMs < 0 {
		return ErrInvalidExpiry
	}
	return nil
}
