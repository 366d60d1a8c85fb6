package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the chunking service
type Config struct {
	Server   ServerConfig
	Chunking ChunkingConfig
	Models   ModelConfig
	Redis    RedisConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

// ChunkingConfig holds the default chunking budget and strategy tuning
type ChunkingConfig struct {
	MaxTokensPerChunk   int     `json:"max_tokens_per_chunk" validate:"gt=0"`
	OverlapTokens       int     `json:"overlap_tokens" validate:"gte=0,ltfield=MaxTokensPerChunk"`
	Encoding            string  `json:"encoding"`
	Normalize           bool    `json:"normalize"`
	SemanticPercentile  float64 `json:"semantic_percentile" validate:"gt=0,lte=1"`
	BoundaryProbability float64 `json:"boundary_probability" validate:"gt=0,lt=1"`
	MarkdownSplitLevel  int     `json:"markdown_split_level" validate:"gte=1"`
	StripHeaders        bool    `json:"strip_headers"`
}

// ModelConfig holds external model configuration. API keys are read from the
// environment by the clients themselves (OPENAI_API_KEY).
type ModelConfig struct {
	ChatModel      string
	EmbeddingModel string
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `json:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format     string `json:"format" validate:"oneof=json console"`
	Output     string `json:"output" validate:"oneof=stdout stderr file"`
	Filename   string `json:"filename,omitempty"`
	TimeFormat string `json:"time_format"`
}

// Load reads configuration from environment variables and returns Config
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3001"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Chunking: ChunkingConfig{
			MaxTokensPerChunk:   getIntEnv("CHUNKING_MAX_TOKENS", 2000),
			OverlapTokens:       getIntEnv("CHUNKING_OVERLAP_TOKENS", 500),
			Encoding:            getEnv("CHUNKING_ENCODING", "cl100k_base"),
			Normalize:           getBoolEnv("CHUNKING_NORMALIZE", false),
			SemanticPercentile:  getFloatEnv("CHUNKING_SEMANTIC_PERCENTILE", 0.95),
			BoundaryProbability: getFloatEnv("CHUNKING_BOUNDARY_PROBABILITY", 0.5),
			MarkdownSplitLevel:  getIntEnv("CHUNKING_MARKDOWN_SPLIT_LEVEL", 2),
			StripHeaders:        getBoolEnv("CHUNKING_STRIP_HEADERS", false),
		},
		Models: ModelConfig{
			ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			TTL:      getDurationEnv("REDIS_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			Filename:   getEnv("LOG_FILENAME", "logs/app.log"),
			TimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c.Chunking); err != nil {
		return err
	}
	return validate.Struct(c.Logging)
}

// GetRedisURL returns the Redis connection address
func (c *Config) GetRedisURL() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Printf("Warning: Invalid float value for %s: %s, using default: %g", key, value, defaultValue)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Warning: Invalid boolean value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: Invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
