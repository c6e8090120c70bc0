package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the sift configuration.
type Config struct {
	Catalog string      `json:"catalog,omitempty"`
	Format  string      `json:"format"`
	MaxRows int         `json:"maxRows"`
	Color   bool        `json:"color"`
	Cache   CacheConfig `json:"cache"`
}

// CacheConfig controls result caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// Default returns a Config with all defaults applied. An empty Catalog
// selects the built-in demo catalog.
func Default() Config {
	return Config{
		Format:  "json",
		MaxRows: 0,
		Color:   true,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for sift.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sift"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "sift"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "sift"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "sift"), nil
	default:
		return filepath.Join(home, ".config", "sift"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// fileOverlay mirrors Config with pointer fields, so a value the file
// sets to false or zero is distinguishable from one it omits.
type fileOverlay struct {
	Catalog string       `json:"catalog"`
	Format  string       `json:"format"`
	MaxRows *int         `json:"maxRows"`
	Color   *bool        `json:"color"`
	Cache   cacheOverlay `json:"cache"`
}

type cacheOverlay struct {
	Enabled    *bool  `json:"enabled"`
	Dir        string `json:"dir"`
	TTLSeconds *int   `json:"ttlSeconds"`
}

func loadOverlay() (fileOverlay, error) {
	path, err := ConfigPath()
	if err != nil {
		return fileOverlay{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileOverlay{}, nil
		}
		return fileOverlay{}, fmt.Errorf("reading config file: %w", err)
	}
	var overlay fileOverlay
	if err := json.Unmarshal(data, &overlay); err != nil {
		return fileOverlay{}, fmt.Errorf("parsing config file: %w", err)
	}
	return overlay, nil
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	overlay, err := loadOverlay()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, overlay)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src fileOverlay) {
	if src.Catalog != "" {
		dst.Catalog = src.Catalog
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.MaxRows != nil {
		dst.MaxRows = *src.MaxRows
	}
	if src.Color != nil {
		dst.Color = *src.Color
	}
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = *src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds != nil {
		dst.Cache.TTLSeconds = *src.Cache.TTLSeconds
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("SIFT_CATALOG"); v != "" {
		cfg.Catalog = v
	}
	if v := os.Getenv("SIFT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("SIFT_MAX_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRows = n
		}
	}
	if v := os.Getenv("SIFT_NO_CACHE"); v != "" {
		cfg.Cache.Enabled = false
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["catalog"]; ok && v != "" {
		cfg.Catalog = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["maxRows"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRows = n
		}
	}
}

// SetField sets a single config field by key name. Returns an error if
// the key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "catalog":
		cfg.Catalog = value
	case "format":
		cfg.Format = value
	case "maxRows":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxRows must be an integer: %w", err)
		}
		cfg.MaxRows = n
	case "color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("color must be a boolean: %w", err)
		}
		cfg.Color = b
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cache.ttlSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
