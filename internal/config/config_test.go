package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	if cfg.MaxAlbums != DefaultMaxAlbums {
		t.Errorf("Expected %d max albums, got %d", DefaultMaxAlbums, cfg.MaxAlbums)
	}
	if cfg.AlbumPageSize != DefaultAlbumPageSize {
		t.Errorf("Expected page size %d, got %d", DefaultAlbumPageSize, cfg.AlbumPageSize)
	}
	if cfg.CoversDir == "" || cfg.Parallelism <= 0 {
		t.Error("Defaults incomplete")
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		ServerURL: "https://music.example.com", Username: "alice", Password: "secret",
		MaxAlbums: 2000, AlbumPageSize: 500,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing server", func(c *Config) { c.ServerURL = "" }},
		{"missing username", func(c *Config) { c.Username = "" }},
		{"missing password", func(c *Config) { c.Password = "" }},
		{"bad page size", func(c *Config) { c.AlbumPageSize = 0 }},
		{"bad max albums", func(c *Config) { c.MaxAlbums = -1 }},
	}
	for _, tc := range cases {
		cfg := *valid
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{ServerURL: "https://music.example.com", MaxAlbums: 100}
	cfg.ApplyDefaults()

	if cfg.MaxAlbums != 100 {
		t.Errorf("Explicit value overwritten: %d", cfg.MaxAlbums)
	}
	if cfg.AlbumPageSize != DefaultAlbumPageSize {
		t.Errorf("Zero page size should default, got %d", cfg.AlbumPageSize)
	}
	if cfg.CoversDir != "covers" || cfg.Parallelism != 4 {
		t.Errorf("Defaults not applied: %+v", cfg)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	saved := &Config{
		ServerURL: "https://music.example.com", Username: "alice", Password: "secret",
		MaxAlbums: 1500, AlbumPageSize: 250, Year: 2023, CoversDir: "art", Parallelism: 2,
	}
	if err := SaveConfig(path, saved); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// Credentials must not be world-readable
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	loaded := &Config{}
	if err := LoadConfig(path, loaded); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *saved {
		t.Errorf("Round trip mismatch:\nsaved  %+v\nloaded %+v", saved, loaded)
	}
}

func TestLoadConfigFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"ServerURL":"https://music.example.com","Username":"alice","Password":"secret"}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{}
	if err := LoadConfig(path, cfg); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxAlbums != DefaultMaxAlbums || cfg.AlbumPageSize != DefaultAlbumPageSize {
		t.Errorf("Scan defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Loaded config should validate: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cfg := &Config{}
	if err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), cfg); err == nil {
		t.Error("Missing file should error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := LoadConfig(path, cfg); err == nil {
		t.Error("Malformed JSON should error")
	}
}
