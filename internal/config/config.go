package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"` // gin mode: debug|release|test
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // postgres|sqlite3
	DSN          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig enables the list cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty: console only
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite3",
			DSN:          "tracker.db",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{TTL: 5 * time.Minute},
		Auth:  AuthConfig{TokenTTL: 24 * time.Hour},
		Log:   LogConfig{Level: "info"},
	}
}

// LoadConfig reads the YAML file at path over the defaults and then applies
// TRACKER_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(cfg, newEnv())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func applyEnv(cfg *Config, v *viper.Viper) {
	if s := v.GetString("server.port"); s != "" {
		cfg.Server.Port = v.GetInt("server.port")
	}
	if s := v.GetString("server.mode"); s != "" {
		cfg.Server.Mode = s
	}
	if s := v.GetString("database.driver"); s != "" {
		cfg.Database.Driver = s
	}
	if s := v.GetString("database.url"); s != "" {
		cfg.Database.DSN = s
	}
	if s := v.GetString("redis.addr"); s != "" {
		cfg.Redis.Addr = s
	}
	if s := v.GetString("redis.password"); s != "" {
		cfg.Redis.Password = s
	}
	if s := v.GetString("auth.jwt_secret"); s != "" {
		cfg.Auth.JWTSecret = s
	}
	if s := v.GetString("log.level"); s != "" {
		cfg.Log.Level = s
	}
	if s := v.GetString("log.file"); s != "" {
		cfg.Log.File = s
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite3, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	return nil
}
