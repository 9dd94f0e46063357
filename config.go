package relay

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds per-instance dispatcher configuration.
type Config struct {
	// Application is the identifier this instance answers for. Remote
	// requests carrying any other application are rejected as not found.
	Application string `envconfig:"APPLICATION"`

	// ResourceAliases maps deployment-specific resource names onto the
	// names event routes were registered under. Feed it into
	// metadata.Builder.Alias when building the routing table.
	ResourceAliases map[string]string `envconfig:"RESOURCE_ALIASES"`

	// LogLevel is the minimum slog level ("debug", "info", "warn", "error").
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// AuthSecret is the HMAC secret used by the JWT security provider.
	AuthSecret string `envconfig:"AUTH_SECRET"`

	// TokenTTL is the lifetime of tokens issued by the JWT provider.
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"1h"`

	// TokenRenewWithin is how close to expiry a verified token is
	// re-issued and surfaced to the caller via the Token header.
	TokenRenewWithin time.Duration `envconfig:"TOKEN_RENEW_WITHIN" default:"10m"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		TokenTTL:         1 * time.Hour,
		TokenRenewWithin: 10 * time.Minute,
	}
}

// Level maps LogLevel onto a slog.Level. Unknown values read as info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from RELAY_-prefixed environment variables
// (RELAY_APPLICATION, RELAY_LOG_LEVEL, ...).
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("relay", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
