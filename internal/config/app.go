package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidThreshold = errors.New("similarity threshold must be within [0,1]")

const (
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

type AppConfig struct {
	RuntimePath string `env:"SMARTCTX_RUNTIME_PATH" envDefault:".smartctx"`

	// Context filtering
	SimilarityThreshold float64       `env:"SIMILARITY_THRESHOLD" envDefault:"0.4"`
	EmbeddingSearch     bool          `env:"EMBEDDING_SEARCH" envDefault:"true"`
	EmbeddingCategory   string        `env:"EMBEDDING_CATEGORY" envDefault:"embedding"`
	FilterTimeout       time.Duration `env:"FILTER_TIMEOUT" envDefault:"10s"`
	CacheBackend        string        `env:"EMBEDDING_CACHE_BACKEND" envDefault:"file"`

	// Topic extraction
	ExtractionCategory         string        `env:"EXTRACTION_CATEGORY" envDefault:"fast"`
	ExtractionTimeout          time.Duration `env:"EXTRACTION_TIMEOUT" envDefault:"60s"`
	ExtractionMaxMessageTokens int           `env:"EXTRACTION_MAX_MESSAGE_TOKENS" envDefault:"200"`

	// Chat turns
	ChatCategory    string  `env:"CHAT_CATEGORY" envDefault:"chat"`
	ChatMaxTokens   int     `env:"CHAT_MAX_TOKENS" envDefault:"2048"`
	ChatTemperature float64 `env:"CHAT_TEMPERATURE" envDefault:"0.7"`

	// Transport Flags
	EnableHTTP     bool   `env:"ENABLE_HTTP" envDefault:"true"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:"127.0.0.1:8088"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableRedis    bool   `env:"ENABLE_REDIS" envDefault:"false"`
}

// LoadAppConfig parses the environment and validates the result.
func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse app config: %w", err)
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects out-of-range values instead of clamping them. NaN is out
// of range.
func (c *AppConfig) Validate() error {
	if !(c.SimilarityThreshold >= 0 && c.SimilarityThreshold <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, c.SimilarityThreshold)
	}
	switch c.CacheBackend {
	case CacheBackendFile, CacheBackendSQLite, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown embedding cache backend: %q", c.CacheBackend)
	}
	if c.CacheBackend == CacheBackendRedis && !c.EnableRedis {
		return errors.New("embedding cache backend redis requires ENABLE_REDIS=true")
	}
	if c.ExtractionMaxMessageTokens <= 0 {
		return fmt.Errorf("extraction max message tokens must be positive, got %d", c.ExtractionMaxMessageTokens)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "smartctx.db")
}

// GetMemoryDir is where per-chat embedding cache documents live.
func (c AppConfig) GetMemoryDir() string {
	return filepath.Join(c.RuntimePath, ".memory")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
