// Package config carga la configuración desde un YAML opcional con
// override por variables de entorno.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port    string `yaml:"port" env:"PORT" env-default:"8080"`
	Env     string `yaml:"env" env:"APP_ENV" env-default:"local"`
	AppName string `yaml:"app_name" env:"APP_NAME" env-default:"animal-shelter-api"`

	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`

	PageSize     int           `yaml:"page_size" env:"PAGE_SIZE" env-default:"5"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" env-default:"10s"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	DSN        string `yaml:"-" env:"DB_DSN"` // secreto: solo env
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"data/shelter.db"`
}

type AuthConfig struct {
	// Enabled=false solo vale en local/test, donde se acepta X-Debug-User-ID.
	Enabled     bool   `yaml:"enabled" env:"AUTH_ENABLED" env-default:"false"`
	Issuer      string `yaml:"issuer" env:"AUTH_ISSUER"`
	Audience    string `yaml:"audience" env:"AUTH_AUDIENCE"`
	JWKSURL     string `yaml:"jwks_url" env:"AUTH_JWKS_URL"`
	UserinfoURL string `yaml:"userinfo_url" env:"AUTH_USERINFO_URL"`
}

// Load lee path si existe; las variables de entorno siempre ganan.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Auth.Enabled && cfg.Auth.JWKSURL == "" && cfg.Auth.Issuer != "" {
		cfg.Auth.JWKSURL = strings.TrimRight(cfg.Auth.Issuer, "/") + "/.well-known/jwks.json"
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("DB_DSN required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.Enabled && c.Auth.JWKSURL == "" {
		return errors.New("AUTH_JWKS_URL or AUTH_ISSUER required when AUTH_ENABLED")
	}
	if !c.Auth.Enabled && !c.localEnv() {
		return fmt.Errorf("AUTH_ENABLED required when APP_ENV=%q", c.Env)
	}
	if c.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be positive")
	}
	return nil
}

// DevHeaderAllowed: el header X-Debug-User-ID solo vale sin auth y en local/test.
func (c *Config) DevHeaderAllowed() bool {
	return !c.Auth.Enabled && c.localEnv()
}

func (c *Config) localEnv() bool {
	return c.Env == "local" || c.Env == "test"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
