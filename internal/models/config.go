package models

// ConfigError indicates an invalid or incomplete configuration
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int `json:"port"`
	ReadTimeoutSec  int `json:"readTimeoutSec"`
	WriteTimeoutSec int `json:"writeTimeoutSec"`
	IdleTimeoutSec  int `json:"idleTimeoutSec"`
}

// PairingConfig holds pairing code dedup and expiry settings
type PairingConfig struct {
	DedupWindowMs int `json:"dedupWindowMs"`
	ExpiryMs      int `json:"expiryMs"`
	QRImageSize   int `json:"qrImageSize"`
}

// StoreConfig holds per-session message store settings
type StoreConfig struct {
	Capacity          int `json:"capacity"`
	DefaultQueryLimit int `json:"defaultQueryLimit"`
}

// TransportConfig holds settings for the external transport API
type TransportConfig struct {
	APIBaseURL string `json:"apiBaseUrl"`
	APIKey     string `json:"apiKey,omitempty"`
	TimeoutSec int    `json:"timeoutSec"`
}

// Config is the top-level application configuration
type Config struct {
	LogLevel  string          `json:"logLevel"`
	Server    ServerConfig    `json:"server"`
	Pairing   PairingConfig   `json:"pairing"`
	Store     StoreConfig     `json:"store"`
	Transport TransportConfig `json:"transport"`
}
