package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Backend selects who talks to the repository: "git" (exec, default)
	// or "native" (go-git, no binary required)
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Output settings
	Format string `yaml:"format" mapstructure:"format"` // "table", "json", "csv", "yaml"
	Color  string `yaml:"color" mapstructure:"color"`   // "auto", "always", "never"

	// Progress marker interval in commits; 0 disables
	Progress int `yaml:"progress" mapstructure:"progress"`

	// Hard cap on commits read per run; 0 means unbounded
	MaxCommits int `yaml:"max_commits" mapstructure:"max_commits"`

	// Cache configuration
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`

	// Export configuration
	Export ExportConfig `yaml:"export" mapstructure:"export"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"` // empty = next to the repo's git dir
}

type ExportConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // default sqlite file for `lastmod export`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Backend:  "git",
		Format:   "table",
		Color:    "auto",
		Progress: 0,
		Cache: CacheConfig{
			Enabled: true,
		},
		Export: ExportConfig{
			Path: "lastmod.db",
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Load .env files first
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults
	cfg := Default()
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("format", cfg.Format)
	v.SetDefault("color", cfg.Color)
	v.SetDefault("progress", cfg.Progress)
	v.SetDefault("max_commits", cfg.MaxCommits)
	v.SetDefault("cache", cfg.Cache)
	v.SetDefault("export", cfg.Export)

	// Load from environment variables
	v.SetEnvPrefix("LASTMOD")
	v.AutomaticEnv()

	// Try to find config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath(".lastmod")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".lastmod"))
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",       // Main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	// Also try loading from home directory
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".lastmod", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if backend := os.Getenv("LASTMOD_BACKEND"); backend != "" {
		cfg.Backend = backend
	}
	if format := os.Getenv("LASTMOD_FORMAT"); format != "" {
		cfg.Format = format
	}
	if color := os.Getenv("LASTMOD_COLOR"); color != "" {
		cfg.Color = color
	}
	if progress := os.Getenv("LASTMOD_PROGRESS"); progress != "" {
		if n, err := strconv.Atoi(progress); err == nil {
			cfg.Progress = n
		}
	}
	if max := os.Getenv("LASTMOD_MAX_COMMITS"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			cfg.MaxCommits = n
		}
	}
	if disabled := os.Getenv("LASTMOD_CACHE_DISABLED"); disabled == "true" || disabled == "1" {
		cfg.Cache.Enabled = false
	}
	if dir := os.Getenv("LASTMOD_CACHE_PATH"); dir != "" {
		cfg.Cache.Path = expandPath(dir)
	}
	if path := os.Getenv("LASTMOD_EXPORT_PATH"); path != "" {
		cfg.Export.Path = expandPath(path)
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Validate checks the enum-valued settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case "git", "native":
	default:
		return fmt.Errorf("invalid backend %q, must be: git or native", c.Backend)
	}
	switch c.Format {
	case "table", "json", "csv", "yaml":
	default:
		return fmt.Errorf("invalid format %q, must be: table, json, csv, or yaml", c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q, must be: auto, always, or never", c.Color)
	}
	return nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("backend", c.Backend)
	v.Set("format", c.Format)
	v.Set("color", c.Color)
	v.Set("progress", c.Progress)
	v.Set("max_commits", c.MaxCommits)
	v.Set("cache", c.Cache)
	v.Set("export", c.Export)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
