package lib

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
type Config struct {
	Port        string        `yaml:"port"`
	LogLevel    string        `yaml:"logLevel"`
	CORSOrigins string        `yaml:"corsOrigins"`
	Mongo       MongoConfig   `yaml:"mongo"`
	Auth        AuthConfig    `yaml:"auth"`
	Storage     StorageConfig `yaml:"storage"`
	NATS        NATSConfig    `yaml:"nats"`
	Limits      LimitsConfig  `yaml:"limits"`
	Metrics     bool          `yaml:"metrics"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	// Retries bounds optimistic-concurrency retries per document write.
	Retries int `yaml:"retries"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwtSecret"`
	TokenTTL   time.Duration `yaml:"tokenTTL"`
	BcryptCost int           `yaml:"bcryptCost"`
}

// StorageConfig points at the S3-compatible bucket holding tweet images.
// An empty bucket disables uploads.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	PublicURL       string `yaml:"publicUrl"`
}

type NATSConfig struct {
	URL           string        `yaml:"url"`
	MaxReconnects int           `yaml:"maxReconnects"`
	ReconnectWait time.Duration `yaml:"reconnectWait"`
}

type LimitsConfig struct {
	// Per-user write throttling.
	WritesPerSecond float64 `yaml:"writesPerSecond"`
	WriteBurst      int     `yaml:"writeBurst"`
	// Per-IP search requests per minute.
	SearchPerMinute int `yaml:"searchPerMinute"`
}

// DefaultConfig returns a configuration usable for local development.
func DefaultConfig() Config {
	return Config{
		Port:        "3000",
		LogLevel:    "info",
		CORSOrigins: "*",
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "twitter_clone",
			Retries:  5,
		},
		Auth: AuthConfig{
			JWTSecret:  "fallback-secret-key",
			TokenTTL:   24 * time.Hour,
			BcryptCost: 8,
		},
		Storage: StorageConfig{Region: "auto"},
		NATS: NATSConfig{
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
		},
		Limits: LimitsConfig{
			WritesPerSecond: 5,
			WriteBurst:      20,
			SearchPerMinute: 60,
		},
		Metrics: true,
	}
}

// LoadConfig layers defaults, the optional YAML file named by CONFIG_FILE,
// a .env file and finally the process environment.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := cfg.loadFile(path); err != nil {
		return cfg, err
	}

	if err := godotenv.Load(); err != nil {
		Log.Debug("no .env file loaded")
	}

	cfg.ResolveEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// ResolveEnv overrides fields from environment variables when they are set.
func (c *Config) ResolveEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DB", c.Mongo.Database)
	c.Mongo.Retries = getEnvAsInt("STORE_RETRIES", c.Mongo.Retries)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvAsDuration("JWT_TTL", c.Auth.TokenTTL)
	c.Auth.BcryptCost = getEnvAsInt("BCRYPT_COST", c.Auth.BcryptCost)

	c.Storage.Bucket = getEnv("S3_BUCKET", c.Storage.Bucket)
	c.Storage.Endpoint = getEnv("S3_ENDPOINT", c.Storage.Endpoint)
	c.Storage.Region = getEnv("S3_REGION", c.Storage.Region)
	c.Storage.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", c.Storage.AccessKeyID)
	c.Storage.SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", c.Storage.SecretAccessKey)
	c.Storage.PublicURL = getEnv("S3_PUBLIC_URL", c.Storage.PublicURL)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)

	c.Limits.WritesPerSecond = getEnvAsFloat("RATE_LIMIT_RPS", c.Limits.WritesPerSecond)
	c.Limits.WriteBurst = getEnvAsInt("RATE_LIMIT_BURST", c.Limits.WriteBurst)
	c.Limits.SearchPerMinute = getEnvAsInt("SEARCH_RATE_LIMIT", c.Limits.SearchPerMinute)

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		c.Metrics = strings.EqualFold(v, "true") || v == "1"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
