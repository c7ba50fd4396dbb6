package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "HVACQUOTE_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Store     StoreConfig     `yaml:"store"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how MCP clients connect: "http" or "stdio".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// AuthConfig protects the HTTP surface with a static bearer token. An empty
// token disables auth.
type AuthConfig struct {
	Token string `yaml:"token"`
}

// CatalogConfig points at a YAML equipment catalog. Empty uses the built-in
// catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

type StoreConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "hvacquote.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Debounce: time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads an optional .env file, an optional YAML file and then
// HVACQUOTE_* environment variables, later sources winning.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv(envPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Store.Debounce < 0 {
		return fmt.Errorf("invalid store debounce %s", c.Store.Debounce)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"SERVER_HOST":    &cfg.Server.Host,
		"TRANSPORT_MODE": &cfg.Transport.Mode,
		"DB_PATH":        &cfg.DB.Path,
		"LOG_LEVEL":      &cfg.Log.Level,
		"LOG_FORMAT":     &cfg.Log.Format,
		"LOG_PATH":       &cfg.Log.Path,
		"AUTH_TOKEN":     &cfg.Auth.Token,
		"CATALOG_PATH":   &cfg.Catalog.Path,
	}
	for name, dst := range str {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	if portStr := os.Getenv(envPrefix + "SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", envPrefix, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(envPrefix + "STORE_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTORE_DEBOUNCE: %w", envPrefix, err)
		}
		cfg.Store.Debounce = d
	}
	if v := os.Getenv(envPrefix + "METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS_ENABLED: %w", envPrefix, err)
		}
		cfg.Metrics.Enabled = enabled
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
