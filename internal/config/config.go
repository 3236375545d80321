package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the store backend. Driver is "sqlite" (default) or
// "postgres"; Path applies to sqlite, the remaining fields to postgres.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (s StorageConfig) DSN() string {
	sslmode := s.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, s.Port, s.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix STARSET_ and underscore-separated
// paths:
//
//	STARSET_SERVER_HOST, STARSET_SERVER_PORT,
//	STARSET_STORAGE_DRIVER, STARSET_STORAGE_PATH,
//	STARSET_DB_HOST, STARSET_DB_PORT, STARSET_DB_NAME,
//	STARSET_DB_USER, STARSET_DB_PASSWORD, STARSET_DB_SSLMODE,
//	STARSET_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STARSET_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("STARSET_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STARSET_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STARSET_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("STARSET_DB_HOST"); v != "" {
		cfg.Storage.Host = v
	}
	if v := os.Getenv("STARSET_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Port = port
		}
	}
	if v := os.Getenv("STARSET_DB_NAME"); v != "" {
		cfg.Storage.Name = v
	}
	if v := os.Getenv("STARSET_DB_USER"); v != "" {
		cfg.Storage.User = v
	}
	if v := os.Getenv("STARSET_DB_PASSWORD"); v != "" {
		cfg.Storage.Password = v
	}
	if v := os.Getenv("STARSET_DB_SSLMODE"); v != "" {
		cfg.Storage.SSLMode = v
	}
	if v := os.Getenv("STARSET_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.Path == "" {
		cfg.Storage.Path = "starset.db"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Storage.Driver {
	case "sqlite":
	case "postgres":
		if c.Storage.Host == "" {
			return fmt.Errorf("storage.host is required for postgres")
		}
		if c.Storage.Port == 0 {
			return fmt.Errorf("storage.port is required for postgres")
		}
		if c.Storage.Name == "" {
			return fmt.Errorf("storage.name is required for postgres")
		}
		if c.Storage.User == "" {
			return fmt.Errorf("storage.user is required for postgres")
		}
	default:
		return fmt.Errorf("storage.driver must be sqlite or postgres, got %q", c.Storage.Driver)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
