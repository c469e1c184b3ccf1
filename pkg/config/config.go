package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration
type Config struct {
	API     APIConfig
	Driver  DriverConfig
	Storage StorageConfig
	Stripe  StripeConfig
	Geocode GeocodeConfig
	Logging LoggingConfig
}

// APIConfig holds backend API connection settings
type APIConfig struct {
	BaseURL        string
	Timeout        int // in seconds
	BreakerEnabled bool
}

// DriverConfig holds the driver session cadences
type DriverConfig struct {
	PollInterval     time.Duration // available-rides poll while online
	LocationInterval time.Duration // position report while online
}

// StorageConfig selects the durable key-value backend
type StorageConfig struct {
	Backend  string // memory, file, redis
	FilePath string
	Redis    RedisConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// StripeConfig holds payment collaborator settings
type StripeConfig struct {
	APIKey string
}

// GeocodeConfig selects the reverse-geocoding provider
type GeocodeConfig struct {
	Provider     string // nominatim, google
	GoogleAPIKey string
	NominatimURL string
	CacheTTL     time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Environment string
	SentryDSN   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:        getEnv("LASTMILE_API_URL", "http://localhost:8080"),
			Timeout:        getEnvAsInt("LASTMILE_API_TIMEOUT", 10),
			BreakerEnabled: getEnvAsBool("LASTMILE_API_BREAKER", true),
		},
		Driver: DriverConfig{
			PollInterval:     getEnvAsDuration("DRIVER_POLL_INTERVAL", 30*time.Second),
			LocationInterval: getEnvAsDuration("DRIVER_LOCATION_INTERVAL", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "file"),
			FilePath: getEnv("STORAGE_FILE_PATH", ".lastmile/state.json"),
			Redis: RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnv("REDIS_PORT", "6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			},
		},
		Stripe: StripeConfig{
			APIKey: getEnv("STRIPE_API_KEY", ""),
		},
		Geocode: GeocodeConfig{
			Provider:     getEnv("GEOCODE_PROVIDER", "nominatim"),
			GoogleAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
			NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			CacheTTL:     getEnvAsDuration("GEOCODE_CACHE_TTL", 7*24*time.Hour),
		},
		Logging: LoggingConfig{
			Environment: getEnv("ENVIRONMENT", "development"),
			SentryDSN:   getEnv("SENTRY_DSN", ""),
		},
	}

	return cfg, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return c.Host + ":" + c.Port
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
