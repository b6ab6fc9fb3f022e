// Package config loads orgsync configuration from the environment and an
// optional config file, producing an explicit Config passed to collaborators.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/jackzampolin/orgsync/internal/home"
)

// ErrMissingCredential is returned when a required credential is not set.
var ErrMissingCredential = errors.New("missing credential")

// Config holds orgsync configuration.
// Optionally stored at: {home}/config.yaml; credentials come from the
// environment (NOTION_TOKEN, DATABASE_ID).
type Config struct {
	Notion NotionConfig `mapstructure:"notion" yaml:"notion"`
	Export ExportConfig `mapstructure:"export" yaml:"export"`
	Ingest IngestConfig `mapstructure:"ingest" yaml:"ingest"`
}

// NotionConfig holds the remote API settings.
type NotionConfig struct {
	// Token is the bearer credential (env: NOTION_TOKEN).
	Token string `mapstructure:"token" yaml:"token,omitempty"`
	// DatabaseID identifies the database to sync (env: DATABASE_ID).
	DatabaseID string `mapstructure:"database_id" yaml:"database_id,omitempty"`
	// Version is the API version header value.
	Version string `mapstructure:"version" yaml:"version"`
	// BaseURL is the API endpoint (overridable for tests).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// ExportConfig configures the export command.
type ExportConfig struct {
	// Path is the CSV destination for the export command.
	Path string `mapstructure:"path" yaml:"path"`
}

// IngestConfig configures the ingest command.
type IngestConfig struct {
	// Path is the CSV destination for the ingest command; when the file
	// already exists it also seeds the processed-ID set.
	Path string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig(h *home.Dir) *Config {
	return &Config{
		Notion: NotionConfig{
			Version: "2022-06-28",
			BaseURL: "https://api.notion.com",
		},
		Export: ExportConfig{Path: h.ExportPath()},
		Ingest: IngestConfig{Path: h.IngestPath()},
	}
}

// Load reads configuration from defaults, the optional config file, and the
// environment. Environment values always win.
func Load(cfgFile string, h *home.Dir) (*Config, error) {
	defaults := DefaultConfig(h)

	v := viper.New()
	v.SetDefault("notion.version", defaults.Notion.Version)
	v.SetDefault("notion.base_url", defaults.Notion.BaseURL)
	v.SetDefault("export.path", defaults.Export.Path)
	v.SetDefault("ingest.path", defaults.Ingest.Path)

	// Credentials keep the original variable names, so no prefix.
	if err := v.BindEnv("notion.token", "NOTION_TOKEN"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("notion.database_id", "DATABASE_ID"); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(h.Path())
	}

	// Config file is optional.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate reports missing credentials before the first remote call.
func (c *Config) Validate() error {
	if c.Notion.Token == "" {
		return fmt.Errorf("%w: NOTION_TOKEN is not set", ErrMissingCredential)
	}
	if c.Notion.DatabaseID == "" {
		return fmt.Errorf("%w: DATABASE_ID is not set", ErrMissingCredential)
	}
	return nil
}
