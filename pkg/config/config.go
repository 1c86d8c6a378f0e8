package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for sheet-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys, database password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5004"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Video listing (YouTube Data API v3)
	YouTube YouTubeConfig `yaml:"youtube"`

	// Identification service (OpenAI-compatible chat endpoint)
	AI AIConfig `yaml:"ai"`

	// Problem catalog (LeetCode GraphQL)
	Catalog CatalogConfig `yaml:"catalog"`

	// Workspace file-tree and problem-content services
	Workspace WorkspaceConfig `yaml:"workspace"`

	// Import pipeline tuning
	Import ImportConfig `yaml:"import"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"algonote"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"sheet_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// YouTubeConfig holds YouTube Data API settings.
type YouTubeConfig struct {
	BaseURL string `yaml:"base_url" env:"YOUTUBE_API_BASE" env-default:"https://www.googleapis.com/youtube/v3"`
	APIKey  string `yaml:"-" env:"YOUTUBE_API_KEY"` // Secret - not in YAML
	// PageSize is the playlistItems page size. Capped at 50 by the API.
	PageSize int `yaml:"page_size" env:"YOUTUBE_PAGE_SIZE" env-default:"50"`
}

// AIConfig holds the identification LLM endpoint settings.
// The default endpoint is OpenRouter, which speaks the OpenAI chat API.
type AIConfig struct {
	BaseURL        string `yaml:"base_url" env:"AI_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	Model          string `yaml:"model" env:"AI_MODEL" env-default:"deepseek/deepseek-chat"`
	APIKey         string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"AI_TIMEOUT_SECONDS" env-default:"20"`
}

// CatalogConfig holds the LeetCode GraphQL endpoint settings.
type CatalogConfig struct {
	GraphQLURL     string `yaml:"graphql_url" env:"CATALOG_GRAPHQL_URL" env-default:"https://leetcode.com/graphql"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"CATALOG_TIMEOUT_SECONDS" env-default:"10"`
}

// WorkspaceConfig holds the external workspace service base URLs.
type WorkspaceConfig struct {
	FileServiceURL    string `yaml:"file_service_url" env:"FILE_SERVICE_URL" env-default:"http://127.0.0.1:5002/api/files"`
	ProblemServiceURL string `yaml:"problem_service_url" env:"PROBLEM_SERVICE_URL" env-default:"http://127.0.0.1:5003/api/problems"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" env:"WORKSPACE_TIMEOUT_SECONDS" env-default:"15"`
}

// ImportConfig holds the per-video pipeline policy knobs.
// The confidence cutoffs come from the original import policy and are
// deliberately configurable rather than derived.
type ImportConfig struct {
	// MinConfidence is the floor below which an identified match is discarded.
	MinConfidence float64 `yaml:"min_confidence" env:"IMPORT_MIN_CONFIDENCE" env-default:"0.5"`
	// MinimalEntryConfidence is the floor for saving an identification-only
	// entry when catalog detail resolution fails.
	MinimalEntryConfidence float64 `yaml:"minimal_entry_confidence" env:"IMPORT_MINIMAL_ENTRY_CONFIDENCE" env-default:"0.8"`
	// MaxConcurrent bounds parallel identification/resolution calls per import.
	MaxConcurrent int `yaml:"max_concurrent" env:"IMPORT_MAX_CONCURRENT" env-default:"4"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Environment variables override YAML values. Secrets (PGPASSWORD, API keys)
// must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Import.MinConfidence < 0 || c.Import.MinConfidence > 1 {
		return fmt.Errorf("import.min_confidence must be in [0,1], got %v", c.Import.MinConfidence)
	}
	if c.Import.MinimalEntryConfidence < 0 || c.Import.MinimalEntryConfidence > 1 {
		return fmt.Errorf("import.minimal_entry_confidence must be in [0,1], got %v", c.Import.MinimalEntryConfidence)
	}
	if c.Import.MinimalEntryConfidence < c.Import.MinConfidence {
		return fmt.Errorf("import.minimal_entry_confidence (%v) must not be below import.min_confidence (%v)",
			c.Import.MinimalEntryConfidence, c.Import.MinConfidence)
	}
	if c.Import.MaxConcurrent < 1 {
		return fmt.Errorf("import.max_concurrent must be at least 1, got %d", c.Import.MaxConcurrent)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, url.QueryEscape(c.Password), c.Host, c.Port, c.Database, c.SSLMode)
}
