package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	OCR      OCRConfig
	Model    ModelConfig
	Ingest   IngestConfig
	Risk     RiskConfig
	Approval ApprovalConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	RequestTimeout time.Duration
}

// StorageConfig holds object-storage (document source) configuration
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// OCRConfig holds text-detection job configuration
type OCRConfig struct {
	BaseURL      string
	WaitTimeout  time.Duration
	PollInterval time.Duration
	MaxPageSize  int32
}

// ModelConfig holds model-inference configuration
type ModelConfig struct {
	BaseURL       string
	APIKey        string
	ModelID       string
	ResponseShape string // "anthropic" | "nova"; anything else falls back
	Temperature   float64
	Timeout       time.Duration
}

// IngestConfig holds extraction pipeline configuration
type IngestConfig struct {
	MaxCharsPerChunk int
	MaxTokens        int
}

// RiskConfig holds risk-analysis configuration
type RiskConfig struct {
	MaxTokens         int
	HighRiskThreshold float64
}

// ApprovalConfig holds human-approval gate configuration
type ApprovalConfig struct {
	Endpoint string // base URL the decision links in notifications point at
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
			RequestTimeout: getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			UseSSL:    getEnvAsBool("STORAGE_USE_SSL", false),
		},
		OCR: OCRConfig{
			BaseURL:      getEnv("OCR_BASE_URL", ""),
			WaitTimeout:  getEnvAsDuration("OCR_WAIT_TIMEOUT", 300*time.Second),
			PollInterval: getEnvAsDuration("OCR_POLL_INTERVAL", 2*time.Second),
			MaxPageSize:  getEnvAsInt32("OCR_MAX_PAGE_SIZE", 1000),
		},
		Model: ModelConfig{
			BaseURL:       getEnv("MODEL_BASE_URL", ""),
			APIKey:        getEnv("MODEL_API_KEY", ""),
			ModelID:       getEnv("MODEL_ID", "us.amazon.nova-lite-v1:0"),
			ResponseShape: getEnv("MODEL_RESPONSE_SHAPE", "nova"),
			Temperature:   getEnvAsFloat64("MODEL_TEMPERATURE", 0),
			Timeout:       getEnvAsDuration("MODEL_TIMEOUT", 45*time.Second),
		},
		Ingest: IngestConfig{
			MaxCharsPerChunk: getEnvAsInt("MAX_CHARS_PER_CHUNK", 12000),
			MaxTokens:        getEnvAsInt("MODEL_MAX_TOKENS", 1200),
		},
		Risk: RiskConfig{
			MaxTokens:         getEnvAsInt("RISK_MAX_TOKENS", 500),
			HighRiskThreshold: getEnvAsFloat64("HIGH_RISK_THRESHOLD", 7),
		},
		Approval: ApprovalConfig{
			Endpoint: getEnv("APPROVAL_API_ENDPOINT", "http://localhost:8080/approvals"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Model.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "MODEL_BASE_URL is required", ErrInvalidInput)
	}
	if c.OCR.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "OCR_BASE_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Ingest.MaxCharsPerChunk <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_CHARS_PER_CHUNK must be positive", ErrInvalidInput)
	}
	return nil
}
