package constants

// Default pairing code configuration values
const (
	DefaultPairingDedupWindowMs = 5000
	DefaultPairingExpiryMs      = 30000
	DefaultQRImageSize          = 256
)

// Default message store configuration values
const (
	DefaultStoreCapacity = 1000
	DefaultQueryLimit    = 50
)

// Chat identifier suffixes used by the WhatsApp transport
const (
	DefaultChatIDSuffix = "@c.us"
	GroupChatIDSuffix   = "@g.us"
)

// Default timeout values
const (
	DefaultHTTPTimeoutSec          = 30
	DefaultTransportInitTimeoutSec = 60
	DefaultTransportOpTimeoutSec   = 30
	DefaultGracefulShutdownSec     = 30
	DefaultServerReadTimeoutSec    = 15
	DefaultServerWriteTimeoutSec   = 15
	DefaultServerIdleTimeoutSec    = 60
)

// Default server configuration values
const (
	DefaultServerPort = 8082
)
