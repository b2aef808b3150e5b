package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	StateBackendMemory   = "memory"
	StateBackendFile     = "file"
	StateBackendPostgres = "postgres"
	StateBackendRedis    = "redis"
)

type Config struct {
	APIURL         string        `envconfig:"API_URL"         default:"http://localhost:8080/api/v1"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	LogLevel       string        `envconfig:"LOG_LEVEL"       default:"info"`
	LogFormat      string        `envconfig:"LOG_FORMAT"      default:"text"`
	LoginPath      string        `envconfig:"LOGIN_PATH"      default:"/login"`
	LastNameMode   string        `envconfig:"LAST_NAME_MODE"  default:"second"`
	TokenTTL       time.Duration `envconfig:"TOKEN_TTL"       default:"168h"`

	StateBackend  string `envconfig:"STATE_BACKEND"  default:"file"`
	StateFile     string `envconfig:"STATE_FILE"     default:"./data/storefront_state.json"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR"     default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"       default:"0"`

	MockAPIAddr string `envconfig:"MOCK_API_ADDR" default:":8080"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		logger.Warnf("Error loading .env file (but continuing): %v", err)
	} else if err == nil {
		logger.Debug("Loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debugf("Configuration loaded: API_URL=%s, StateBackend=%s, Timeout=%s", cfg.APIURL, cfg.StateBackend, cfg.RequestTimeout)
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return fmt.Errorf("configuration error: API_URL cannot be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("configuration error: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("configuration error: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if _, err := domain.ParseNameSplitMode(c.LastNameMode); err != nil {
		return fmt.Errorf("configuration error: LAST_NAME_MODE: %w", err)
	}

	c.StateBackend = strings.ToLower(strings.TrimSpace(c.StateBackend))
	switch c.StateBackend {
	case StateBackendMemory, StateBackendFile, StateBackendRedis:
	case StateBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("configuration error: DATABASE_URL is required for the postgres state backend")
		}
	default:
		return fmt.Errorf("configuration error: unknown STATE_BACKEND %q", c.StateBackend)
	}
	return nil
}

// NameSplitMode returns the validated LAST_NAME_MODE.
func (c *Config) NameSplitMode() domain.NameSplitMode {
	mode, err := domain.ParseNameSplitMode(c.LastNameMode)
	if err != nil {
		return domain.NameSplitSecond
	}
	return mode
}

// NewLogger builds the process logger the way every service here does it.
func NewLogger(level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
