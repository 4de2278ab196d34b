package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Oet      OetConfig
	Chatwoot ChatwootConfig
	Files    FilesConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// OetConfig holds the ticketing backend endpoint and credentials.
type OetConfig struct {
	EndpointURL      string
	Username         string
	Password         string
	DefaultProjectID string
	TimeoutSeconds   int
	// ValidateNitChecksum enables the full check-digit validation of
	// nit_transp as a second layer on top of the format rules.
	ValidateNitChecksum bool
}

// ChatwootConfig holds the chat-platform connection values.
type ChatwootConfig struct {
	BaseURL               string
	Token                 string
	AccountID             string
	RequestTimeoutSeconds int
}

// FilesConfig bounds attachment downloading.
type FilesConfig struct {
	MaxFileSizeBytes       int64
	MaxTotalSizeBytes      int64
	MaxFilesCount          int
	DownloadTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	maxFileSize, err := getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILE_SIZE: %w", err)
	}
	maxTotalSize, err := getEnvAsInt64("MAX_TOTAL_FILE_SIZE", 25*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_TOTAL_FILE_SIZE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "incident-bridge"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			// Worst case is three fetch attempts with backoff plus the
			// slowest download plus the SOAP timeout.
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 180),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Oet: OetConfig{
			EndpointURL:         os.Getenv("OET_WSDL_URL"),
			Username:            os.Getenv("OET_USER"),
			Password:            os.Getenv("OET_PASSWORD"),
			DefaultProjectID:    getEnv("OET_DEFAULT_PROJECT_ID", ""),
			TimeoutSeconds:      getEnvAsInt("HTTP_TIMEOUT_SECONDS", 15),
			ValidateNitChecksum: getEnvAsBool("NIT_CHECKSUM_VALIDATION", false),
		},
		Chatwoot: ChatwootConfig{
			BaseURL:               os.Getenv("CHATWOOT_BASE_URL"),
			Token:                 os.Getenv("CHATWOOT_TOKEN"),
			AccountID:             getEnv("CHATWOOT_ACCOUNT_ID", "1"),
			RequestTimeoutSeconds: getEnvAsInt("CHATWOOT_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Files: FilesConfig{
			MaxFileSizeBytes:       maxFileSize,
			MaxTotalSizeBytes:      maxTotalSize,
			MaxFilesCount:          getEnvAsInt("MAX_FILES_COUNT", 10),
			DownloadTimeoutSeconds: getEnvAsInt("IMAGE_DOWNLOAD_TIMEOUT_SECONDS", 60),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the SOAP submission timeout duration.
func (o OetConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-attempt chat-platform request timeout.
func (c ChatwootConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the per-image download timeout.
func (f FilesConfig) DownloadTimeout() time.Duration {
	if f.DownloadTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(f.DownloadTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
