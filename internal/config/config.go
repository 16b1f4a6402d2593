package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	JWT struct {
		SigningKey string `yaml:"signing_key"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`

		// Parsed from the string fields above during Load.
		AccessTTLDuration  time.Duration `yaml:"-"`
		RefreshTTLDuration time.Duration `yaml:"-"`
	} `yaml:"jwt"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
	FrontendURL string `yaml:"frontend_url"`
}

// Load reads the YAML config named by CONFIG_PATH (default config/config.yaml)
// and then lets environment variables override the secret-bearing fields, so
// deployments never have to write credentials into the file.
func Load() (Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.JWT.SigningKey = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.FrontendURL = v
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":4000"
	}
	if cfg.JWT.SigningKey == "" {
		return Config{}, fmt.Errorf("jwt signing key is not configured")
	}
	cfg.JWT.AccessTTLDuration = 15 * time.Minute
	if cfg.JWT.AccessTTL != "" {
		d, err := time.ParseDuration(cfg.JWT.AccessTTL)
		if err != nil {
			return Config{}, fmt.Errorf("parse jwt access_ttl: %w", err)
		}
		cfg.JWT.AccessTTLDuration = d
	}
	cfg.JWT.RefreshTTLDuration = 30 * 24 * time.Hour
	if cfg.JWT.RefreshTTL != "" {
		d, err := time.ParseDuration(cfg.JWT.RefreshTTL)
		if err != nil {
			return Config{}, fmt.Errorf("parse jwt refresh_ttl: %w", err)
		}
		cfg.JWT.RefreshTTLDuration = d
	}
	return cfg, nil
}
