package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// RequestTimeout bounds every HTTP request of the default client
	RequestTimeout = 2 * time.Minute

	// Scan pacing and cap defaults. The inter-request delays are a politeness control
	// for small self-hosted servers, not a correctness requirement.
	DefaultAlbumPageSize = 500
	DefaultMaxAlbums     = 2000
	DefaultAlbumDelay    = 150 * time.Millisecond
	DefaultDetailDelay   = 60 * time.Millisecond
)

// Config holds the connection and scan settings
type Config struct {
	ServerURL     string `json:"ServerURL"`
	Username      string `json:"Username"`
	Password      string `json:"Password"`
	MaxAlbums     int    `json:"MaxAlbums"`
	AlbumPageSize int    `json:"AlbumPageSize"`
	Year          int    `json:"Year"` // 0 scans all time; otherwise restricts to one calendar year
	CoversDir     string `json:"CoversDir"`
	Parallelism   int    `json:"Parallelism"` // cover downloads only; the scan itself is sequential
}

// GetDefaultConfig returns a config populated with defaults
func GetDefaultConfig() *Config {
	return &Config{
		MaxAlbums:     DefaultMaxAlbums,
		AlbumPageSize: DefaultAlbumPageSize,
		CoversDir:     "covers",
		Parallelism:   4,
	}
}

// ApplyDefaults fills zero-valued scan settings with defaults
func (cfg *Config) ApplyDefaults() {
	defaults := GetDefaultConfig()
	if cfg.MaxAlbums <= 0 {
		cfg.MaxAlbums = defaults.MaxAlbums
	}
	if cfg.AlbumPageSize <= 0 {
		cfg.AlbumPageSize = defaults.AlbumPageSize
	}
	if cfg.CoversDir == "" {
		cfg.CoversDir = defaults.CoversDir
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaults.Parallelism
	}
}

// Validate checks that the config can actually reach a server
func (cfg *Config) Validate() error {
	if cfg.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if cfg.Username == "" {
		return fmt.Errorf("username is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("password is required")
	}
	if cfg.AlbumPageSize <= 0 {
		return fmt.Errorf("album page size must be positive, got %d", cfg.AlbumPageSize)
	}
	if cfg.MaxAlbums <= 0 {
		return fmt.Errorf("max albums must be positive, got %d", cfg.MaxAlbums)
	}
	return nil
}

// CreateDirIfNotExists creates a directory if it does not exist
func CreateDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ApplyDefaults()
	return nil
}

// SaveConfig saves configuration to a JSON file
func SaveConfig(filePath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(filePath)
	if err := CreateDirIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
