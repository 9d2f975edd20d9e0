package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all server configuration
type Config struct {
	// HTTP server settings
	HTTPAddress   string
	PublicBaseURL string

	// Storage
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string

	// Auth
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmails   []string
	AuthRateLimit int // requests per minute per IP on auth endpoints

	// Uploads
	UploadDir       string
	UploadChunkSize int64
	UploadMaxSize   int64
}

// LoadConfig loads configuration from files and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Configure environment variables before reading config
	v.AutomaticEnv()
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":     "HTTP_ADDRESS",
		"PublicBaseURL":   "PUBLIC_BASE_URL",
		"MongoURI":        "MONGO_URI",
		"MongoDatabase":   "MONGO_DATABASE",
		"RedisAddr":       "REDIS_ADDR",
		"RedisPassword":   "REDIS_PASSWORD",
		"JWTSecret":       "JWT_SECRET",
		"TokenTTL":        "TOKEN_TTL",
		"AdminEmails":     "ADMIN_EMAILS",
		"AuthRateLimit":   "AUTH_RATE_LIMIT",
		"UploadDir":       "UPLOAD_DIR",
		"UploadChunkSize": "UPLOAD_CHUNK_SIZE",
		"UploadMaxSize":   "UPLOAD_MAX_SIZE",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("giftspace_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.giftspace")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	log.Debug().Msgf("Config loaded: HTTPAddress=%s, MongoDatabase=%s, UploadDir=%s",
		config.HTTPAddress, config.MongoDatabase, config.UploadDir)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("PublicBaseURL", "http://localhost:8080")
	v.SetDefault("MongoURI", "mongodb://localhost:27017")
	v.SetDefault("MongoDatabase", "giftspace")
	v.SetDefault("RedisAddr", "localhost:6379")
	v.SetDefault("TokenTTL", "24h")
	v.SetDefault("AuthRateLimit", 10)
	v.SetDefault("UploadDir", "./uploads")
	v.SetDefault("UploadChunkSize", int64(1<<20))  // 1 MiB
	v.SetDefault("UploadMaxSize", int64(25<<20))   // 25 MiB
}

// validateConfig validates the required configuration fields
func validateConfig(config *Config) error {
	var missingVars []string

	if config.JWTSecret == "" {
		missingVars = append(missingVars, "JWT_SECRET")
	}

	if config.MongoURI == "" {
		missingVars = append(missingVars, "MONGO_URI")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if config.UploadChunkSize <= 0 {
		return fmt.Errorf("UPLOAD_CHUNK_SIZE must be positive, got %d", config.UploadChunkSize)
	}

	if config.UploadMaxSize < config.UploadChunkSize {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be at least one chunk, got %d", config.UploadMaxSize)
	}

	return nil
}
