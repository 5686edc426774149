// internal/pkg/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all client configuration
type Config struct {
	// Application
	App AppConfig

	// Backend API
	Backend BackendConfig

	// Search session
	Search SearchConfig

	// Home feed
	Home HomeConfig

	// Redis listing cache
	Redis RedisConfig

	// Token persistence
	Tokens TokenConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

// BackendConfig holds marketplace backend configuration
type BackendConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// SearchConfig holds search session configuration
type SearchConfig struct {
	PageSize            int
	LoadMoreDelay       time.Duration
	NearYouRadiusMeters int
	NearMeMaxKm         float64
	SearchLimit         int
	FallbackLat         float64
	FallbackLng         float64
}

// HomeConfig holds home feed configuration
type HomeConfig struct {
	ForYouLimit        int
	NearbyLimit        int
	NewArrivalsLimit   int
	ExploreLimit       int
	NearbyRadiusMeters int
}

// RedisConfig holds the optional listing cache configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// TokenConfig holds token persistence configuration
type TokenConfig struct {
	FilePath string
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	// Initialize viper
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetTypeByDefaultValue(true)

	// Set defaults
	setDefaults()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "swapmart-client"),
			Environment: env,
			Version:     getEnv("APP_VERSION", "dev"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Debug:       getBoolEnv("APP_DEBUG", env == "development"),
		},
		Backend: BackendConfig{
			BaseURL:           getEnv("BACKEND_BASE_URL", "http://localhost:4000/api"),
			Timeout:           getDurationEnv("BACKEND_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getFloatEnv("BACKEND_RPS", 10),
			UserAgent:         getEnv("BACKEND_USER_AGENT", "swapmart-client/dev"),
		},
		Search: SearchConfig{
			PageSize:            getIntEnv("SEARCH_PAGE_SIZE", 15),
			LoadMoreDelay:       getDurationEnv("SEARCH_LOAD_MORE_DELAY", 500*time.Millisecond),
			NearYouRadiusMeters: getIntEnv("SEARCH_NEAR_YOU_RADIUS_M", 10000),
			NearMeMaxKm:         getFloatEnv("SEARCH_NEAR_ME_MAX_KM", 10),
			SearchLimit:         getIntEnv("SEARCH_RESULT_LIMIT", 100),
			FallbackLat:         getFloatEnv("SEARCH_FALLBACK_LAT", 21.0285),
			FallbackLng:         getFloatEnv("SEARCH_FALLBACK_LNG", 105.8542),
		},
		Home: HomeConfig{
			ForYouLimit:        getIntEnv("HOME_FOR_YOU_LIMIT", 5),
			NearbyLimit:        getIntEnv("HOME_NEARBY_LIMIT", 5),
			NewArrivalsLimit:   getIntEnv("HOME_NEW_ARRIVALS_LIMIT", 5),
			ExploreLimit:       getIntEnv("HOME_EXPLORE_LIMIT", 10),
			NearbyRadiusMeters: getIntEnv("HOME_NEARBY_RADIUS_M", 50000),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			TTL:      getDurationEnv("REDIS_TTL", 30*time.Second),
		},
		Tokens: TokenConfig{
			FilePath: getEnv("TOKEN_FILE_PATH", defaultTokenPath()),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search page size must be positive")
	}
	if c.Search.NearYouRadiusMeters <= 0 {
		return fmt.Errorf("near-you radius must be positive")
	}
	if c.Tokens.FilePath == "" {
		return fmt.Errorf("token file path is required")
	}
	return nil
}

// GetRedisAddr returns the formatted Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// Helper functions

func setDefaults() {
	viper.SetDefault("app.name", "swapmart-client")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".swapmart/tokens.json"
	}
	return home + "/.swapmart/tokens.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
