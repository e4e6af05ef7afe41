package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend modes
const (
	BackendAuto   = "auto"
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Local store kinds
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development" or "production"
	DataDir     string `env:"DATA_DIR"`

	// Persistence backend
	BackendMode string        `env:"BACKEND_MODE" envDefault:"auto"`
	APIBaseURL  string        `env:"API_BASE_URL"`
	APITimeout  time.Duration `env:"API_TIMEOUT" envDefault:"0s"`
	LocalStore  string        `env:"LOCAL_STORE" envDefault:"file"`
	SQLitePath  string        `env:"SQLITE_PATH"`
	ProfileFile string        `env:"PROFILE_FILE"`

	// HTTP front end
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	// Discord front end
	DiscordToken     string `env:"DISCORD_TOKEN"`
	DiscordAppID     string `env:"DISCORD_APP_ID"`
	DiscordGuildID   string `env:"DISCORD_GUILD_ID"`
	DiscordWinImages string `env:"DISCORD_WIN_IMAGES"` // one image URL per line, shown on a win

	// Round archive
	ElasticsearchURL         string        `env:"ELASTICSEARCH_URL"`
	ElasticsearchUsername    string        `env:"ELASTICSEARCH_USERNAME"`
	ElasticsearchPassword    string        `env:"ELASTICSEARCH_PASSWORD"`
	ElasticsearchIndexPrefix string        `env:"ELASTICSEARCH_INDEX_PREFIX" envDefault:"placebo"`
	ArchiveRetention         time.Duration `env:"ARCHIVE_RETENTION" envDefault:"2160h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads the configuration from the environment, after merging a .env file if present
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	return parse()
}

func parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if cfg.DataDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.DataDir = filepath.Join(wd, "data")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "placebo.db")
	}
	if cfg.ProfileFile == "" {
		cfg.ProfileFile = filepath.Join(cfg.DataDir, "profiles.json")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks settings every binary depends on
func (c *Config) validate() error {
	switch c.BackendMode {
	case BackendAuto, BackendRemote, BackendLocal:
	default:
		return fmt.Errorf("BACKEND_MODE must be one of auto, remote, local (got %q)", c.BackendMode)
	}
	switch c.LocalStore {
	case StoreMemory, StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("LOCAL_STORE must be one of memory, file, sqlite (got %q)", c.LocalStore)
	}
	if c.BackendMode == BackendRemote {
		return c.ValidateRemote()
	}
	return nil
}

// ValidateRemote checks the settings the remote backend needs
func (c *Config) ValidateRemote() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	return nil
}

// ValidateDiscord checks the settings the Discord bot needs
func (c *Config) ValidateDiscord() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.DiscordAppID == "" {
		return fmt.Errorf("DISCORD_APP_ID is required")
	}
	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ArchiveEnabled reports whether settled rounds are mirrored to Elasticsearch
func (c *Config) ArchiveEnabled() bool {
	return c.ElasticsearchURL != ""
}
