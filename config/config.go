package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig mirrors the service config file layout.
type YAMLConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Watch struct {
		Symbols []string `yaml:"symbols"`
		Cron    string   `yaml:"cron"`
	} `yaml:"watch"`

	Cache struct {
		Path     string `yaml:"path"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"cache"`
}

// Config holds the resolved service configuration.
type Config struct {
	// HTTP service port
	Port int

	// Symbols the watch scheduler scans
	Symbols []string

	// Cron spec for the watch scheduler
	WatchCron string

	// Path to the sqlite bar cache; empty disables caching
	CachePath string

	// How long cached bars stay fresh
	CacheTTL time.Duration
}

// DefaultConfig is used when no config file is given.
var DefaultConfig = Config{
	Port:      19528,
	WatchCron: "0 30 15 * * MON-FRI",
	CachePath: "bars.db",
	CacheTTL:  12 * time.Hour,
	Symbols: []string{
		"sz002415",
		"sh600362",
		"sh513130",
	},
}

// LoadFromFile reads the YAML config at path, applying defaults for
// anything left unset.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var yamlConfig YAMLConfig
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	config := DefaultConfig
	if yamlConfig.Server.Port > 0 {
		config.Port = yamlConfig.Server.Port
	}
	if len(yamlConfig.Watch.Symbols) > 0 {
		config.Symbols = yamlConfig.Watch.Symbols
	}
	if yamlConfig.Watch.Cron != "" {
		config.WatchCron = yamlConfig.Watch.Cron
	}
	config.CachePath = yamlConfig.Cache.Path
	if yamlConfig.Cache.TTLHours > 0 {
		config.CacheTTL = time.Duration(yamlConfig.Cache.TTLHours) * time.Hour
	}
	return &config, nil
}

// GetConfig resolves config with priority: file > environment > defaults.
func GetConfig(configPath string) *Config {
	config := DefaultConfig

	if configPath != "" {
		if cfg, err := LoadFromFile(configPath); err == nil {
			config = *cfg
		} else {
			fmt.Printf("warning: cannot load config file %s: %v\n", configPath, err)
		}
	}

	if port := os.Getenv("STRATLAB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			config.Port = p
		}
	}
	if path := os.Getenv("STRATLAB_CACHE"); path != "" {
		config.CachePath = path
	}

	return &config
}
