// Package config loads runtime startup configuration from YAML with
// environment-variable overrides (DASH_* keys win over the file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 4000
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "muncho_dashboard"
	defaultRedisURL   = "redis://localhost:6379/0"
)

// AppConfig holds runtime startup configuration.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	DSN            string         `yaml:"dsn"` // MySQL DSN; overrides Database when set
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	JWTSecret      string         `yaml:"jwt_secret"`
	Upstream       UpstreamConfig `yaml:"upstream"`
	Storage        StorageConfig  `yaml:"storage"`
}

// DatabaseConfig assembles a MySQL DSN piecewise.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// UpstreamConfig points at the Muncho platform API.
type UpstreamConfig struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	MaxRetries int    `yaml:"max_retries"`
}

// StorageConfig configures the S3 image bucket.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
	KeyTemplate     string `yaml:"key_template"`
	AllowedFormats  string `yaml:"allowed_formats"`
	MaxSizeMB       int    `yaml:"max_size_mb"`
}

// Load reads the YAML file at path (missing file is fine: defaults and env
// overrides still apply) and validates the result.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		RedisURL: defaultRedisURL,
		Database: DatabaseConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
		},
		Storage: StorageConfig{
			AllowedFormats: "png,jpg,jpeg,webp",
			MaxSizeMB:      5,
		},
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("config: upstream.base_url is required")
	}
	if cfg.Upstream.MaxRetries <= 0 {
		cfg.Upstream.MaxRetries = 3
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := envStr("DASH_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := envStr("DASH_ENV"); v != "" {
		cfg.Env = v
	}
	if v := envStr("DASH_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := envStr("DASH_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := envStr("DASH_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := envStr("DASH_UPSTREAM_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := envStr("DASH_UPSTREAM_TOKEN"); v != "" {
		cfg.Upstream.Token = v
	}
	if v := envStr("DASH_ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		cfg.AllowedOrigins = origins
	}
}

func envStr(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// ResolveDSN returns the MySQL DSN, assembling it from the piecewise config
// when no explicit DSN is given.
func (c *AppConfig) ResolveDSN() string {
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.ToLower(strings.TrimSpace(c.Env)) != "production"
}
