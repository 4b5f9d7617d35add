package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the ReelTide backend service.
type Config struct {
	AppPort  int
	LogLevel string

	MongoURI      string
	MongoDatabase string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	AuthRateLimit  int
	AuthRateWindow time.Duration
	AuthRateBurst  int

	ObjectStore ObjectStoreConfig

	GoogleOAuth GoogleOAuthConfig

	IngestQueueSize int
	IngestWorkers   int
	IngestTimeout   time.Duration
}

// ObjectStoreConfig points the service at an S3-compatible bucket used for
// mirrored media assets and client uploads.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	PresignTTL    time.Duration
}

// GoogleOAuthConfig wires the federated login provider. Empty ClientID
// disables the Google endpoints.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides through environment
// variables.
func Load() (Config, error) {
	cfg := Config{
		AppPort:  getInt("REELTIDE_PORT", 8080),
		LogLevel: getString("REELTIDE_LOG_LEVEL", "info"),

		MongoURI:      getString("REELTIDE_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getString("REELTIDE_MONGO_DB", "reeltide"),

		AccessTokenTTL:  getDuration("REELTIDE_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REELTIDE_REFRESH_TTL", 24*time.Hour),

		AuthRateLimit:  getInt("REELTIDE_AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getDuration("REELTIDE_AUTH_RATE_WINDOW", time.Minute),
		AuthRateBurst:  getInt("REELTIDE_AUTH_RATE_BURST", 5),

		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("REELTIDE_S3_BUCKET", ""),
			Region:        getString("REELTIDE_S3_REGION", "us-east-1"),
			Endpoint:      getString("REELTIDE_S3_ENDPOINT", ""),
			PublicBaseURL: getString("REELTIDE_S3_PUBLIC_URL", ""),
			PresignTTL:    getDuration("REELTIDE_S3_PRESIGN_TTL", 10*time.Minute),
		},

		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     getString("REELTIDE_GOOGLE_CLIENT_ID", ""),
			ClientSecret: getString("REELTIDE_GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getString("REELTIDE_GOOGLE_REDIRECT_URL", ""),
		},

		IngestQueueSize: getInt("REELTIDE_INGEST_QUEUE", 16),
		IngestWorkers:   getInt("REELTIDE_INGEST_WORKERS", 2),
		IngestTimeout:   getDuration("REELTIDE_INGEST_TIMEOUT", 2*time.Minute),
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
