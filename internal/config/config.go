package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Presence PresenceConfig `yaml:"presence"`
	Chat     ChatConfig     `yaml:"chat"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port            int    `yaml:"port"`
	Env             string `yaml:"env"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig MySQL connection settings
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// DSN builds the MySQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessExpireMins  int    `yaml:"access_expire_minutes"`
	RefreshExpireMins int    `yaml:"refresh_expire_minutes"`
}

// PresenceConfig presence tracker tuning
type PresenceConfig struct {
	HeartbeatSeconds int `yaml:"heartbeat_seconds"`
	ThrottleSeconds  int `yaml:"throttle_seconds"`
	StalenessMinutes int `yaml:"staleness_minutes"`
}

// Heartbeat returns the heartbeat interval
func (p PresenceConfig) Heartbeat() time.Duration {
	return time.Duration(p.HeartbeatSeconds) * time.Second
}

// Throttle returns the minimum interval between presence writes
func (p PresenceConfig) Throttle() time.Duration {
	return time.Duration(p.ThrottleSeconds) * time.Second
}

// Staleness returns the window after which a lingering online flag is distrusted
func (p PresenceConfig) Staleness() time.Duration {
	return time.Duration(p.StalenessMinutes) * time.Minute
}

// ChatConfig chat store tuning
type ChatConfig struct {
	ReadWindow     int `yaml:"read_window"`
	DeletePageSize int `yaml:"delete_page_size"`
}

// CORSConfig allowed origins for browsers and the WebSocket upgrade
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoadDotEnv loads .env files with priority: .env.local > .env
// godotenv.Load does NOT overwrite already-set env vars,
// so OS env vars always win, .env.local wins over .env.
// Returns list of files actually loaded.
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Load reads the yaml config file and applies env-var overrides
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		// Missing file is fine, env vars may carry everything
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: 8082, Env: "local", ShutdownTimeout: 10},
		Database: DatabaseConfig{
			Host: "127.0.0.1", Port: 3306, User: "devlink", Name: "devlink",
			MaxOpenConns: 25, MaxIdleConns: 10, ConnMaxLifetime: 60,
		},
		Redis:    RedisConfig{Host: "127.0.0.1", Port: 6379, PoolSize: 10},
		JWT:      JWTConfig{AccessExpireMins: 15, RefreshExpireMins: 1440},
		Presence: PresenceConfig{HeartbeatSeconds: 45, ThrottleSeconds: 20, StalenessMinutes: 10},
		Chat:     ChatConfig{ReadWindow: 50, DeletePageSize: 100},
	}
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Server.Env, "APP_ENV")
	setInt(&cfg.Server.Port, "PORT")
	setStr(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setStr(&cfg.Database.User, "DB_USER")
	setStr(&cfg.Database.Password, "DB_PASSWORD")
	setStr(&cfg.Database.Name, "DB_NAME")
	setStr(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	setStr(&cfg.JWT.Secret, "JWT_SECRET")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
