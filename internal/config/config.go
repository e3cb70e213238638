package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

var (
	// ErrUnknownDriver is returned for a DB_DRIVER outside the supported set.
	ErrUnknownDriver = errors.New("unknown DB_DRIVER")
	// ErrMissingSetting is returned when a setting required by the selected driver is empty.
	ErrMissingSetting = errors.New("missing required setting")
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	MongoDBURI string `mapstructure:"MONGODB_URI"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPass     string `mapstructure:"DB_PASS"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBName     string `mapstructure:"DB_NAME"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseDatabaseURL              string `mapstructure:"FIREBASE_DATABASE_URL"`
	FirebaseClientEmail              string `mapstructure:"FIREBASE_CLIENT_EMAIL"`
	FirebasePrivateKey               string `mapstructure:"FIREBASE_PRIVATE_KEY"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	ServicesListLimit int64         `mapstructure:"SERVICES_LIST_LIMIT"`
	MetricsEnabled    bool          `mapstructure:"METRICS_ENABLED"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"PORT", "GIN_MODE", "CLIENT_URL",
	"DB_DRIVER", "MONGODB_URI", "DB_USER", "DB_PASS", "DB_HOST", "DB_NAME",
	"FIREBASE_PROJECT_ID", "FIREBASE_DATABASE_URL", "FIREBASE_CLIENT_EMAIL", "FIREBASE_PRIVATE_KEY",
	"GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"SERVICES_LIST_LIMIT", "METRICS_ENABLED", "SHUTDOWN_TIMEOUT",
}

// LoadConfig reads the optional YAML file named by PATH_CONFIG, then lets
// environment variables override it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "5000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("DB_NAME", "jerins_parlour")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("SERVICES_LIST_LIMIT", 3)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	_ = v.BindEnv("PATH_CONFIG")

	if path := v.GetString("PATH_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.FirebasePrivateKey = strings.ReplaceAll(cfg.FirebasePrivateKey, `\n`, "\n")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings required by the selected store driver.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMongo:
		if c.MongoURI() == "" {
			return fmt.Errorf("%w: MONGODB_URI or DB_USER, DB_PASS and DB_HOST", ErrMissingSetting)
		}
	case DriverFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("%w: FIREBASE_PROJECT_ID is required for the firestore driver", ErrMissingSetting)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w %q", ErrUnknownDriver, c.DBDriver)
	}
	if c.ServicesListLimit <= 0 {
		return fmt.Errorf("SERVICES_LIST_LIMIT must be positive, got %d", c.ServicesListLimit)
	}
	return nil
}

// MongoURI returns MONGODB_URI, or an Atlas SRV URI composed from the
// DB_USER, DB_PASS and DB_HOST parts.
func (c *Config) MongoURI() string {
	if c.MongoDBURI != "" {
		return c.MongoDBURI
	}
	if c.DBUser == "" || c.DBPass == "" || c.DBHost == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

// FirebaseEnabled reports whether enough is configured to verify ID tokens.
func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseProjectID != ""
}

// IsRelease reports whether the service runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
