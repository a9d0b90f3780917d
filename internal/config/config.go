package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port       string `yaml:"port"`
	Mode       string `yaml:"mode"`
	CORSOrigin string `yaml:"corsOrigin"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MySQLConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
}

// StoreConfig selects the local store: "memory", "redis" or "mysql".
type StoreConfig struct {
	Driver    string      `yaml:"driver"`
	KeyPrefix string      `yaml:"keyPrefix"`
	Redis     RedisConfig `yaml:"redis"`
	MySQL     MySQLConfig `yaml:"mysql"`
}

// RemoteConfig points at the optional upstream service. An empty BaseURL
// runs the adapter local-only.
type RemoteConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

type BrokerConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwtSecret"`
	TokenTTL      time.Duration `yaml:"tokenTTL"`
	AdminUsername string        `yaml:"adminUsername"`
	AdminPassword string        `yaml:"adminPassword"`
	// DeletePassword confirms order deletion. It is a confirmation prompt,
	// not an access control.
	DeletePassword string `yaml:"deletePassword"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Remote RemoteConfig `yaml:"remote"`
	Broker BrokerConfig `yaml:"broker"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080", Mode: "release", CORSOrigin: "http://localhost:5173"},
		Store: StoreConfig{
			Driver: "memory",
			Redis:  RedisConfig{Host: "127.0.0.1", Port: "6379"},
			MySQL:  MySQLConfig{Host: "127.0.0.1", Port: "3306", Database: "sales_orders"},
		},
		Remote: RemoteConfig{Timeout: 2 * time.Second},
		Broker: BrokerConfig{Exchange: "order.exchange"},
		Auth: AuthConfig{
			JWTSecret:      "change-me",
			TokenTTL:       72 * time.Hour,
			AdminUsername:  "admin",
			AdminPassword:  "password",
			DeletePassword: "password",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load applies defaults, then the YAML file at path (if any), then the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = GetEnv("PORT", cfg.Server.Port)
	cfg.Server.Mode = GetEnv("GIN_MODE", cfg.Server.Mode)
	cfg.Server.CORSOrigin = GetEnv("CORS_ORIGIN", cfg.Server.CORSOrigin)

	cfg.Store.Driver = GetEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.KeyPrefix = GetEnv("STORE_KEY_PREFIX", cfg.Store.KeyPrefix)
	cfg.Store.Redis.Host = GetEnv("REDIS_HOST", cfg.Store.Redis.Host)
	cfg.Store.Redis.Port = GetEnv("REDIS_PORT", cfg.Store.Redis.Port)
	cfg.Store.Redis.Password = GetEnv("REDIS_PASSWORD", cfg.Store.Redis.Password)
	cfg.Store.Redis.DB = GetEnvAsInt("REDIS_DB", cfg.Store.Redis.DB)
	cfg.Store.MySQL.User = GetEnv("MYSQL_USER", cfg.Store.MySQL.User)
	cfg.Store.MySQL.Password = GetEnv("MYSQL_PASSWORD", cfg.Store.MySQL.Password)
	cfg.Store.MySQL.Host = GetEnv("MYSQL_HOST", cfg.Store.MySQL.Host)
	cfg.Store.MySQL.Port = GetEnv("MYSQL_PORT", cfg.Store.MySQL.Port)
	cfg.Store.MySQL.Database = GetEnv("MYSQL_DATABASE", cfg.Store.MySQL.Database)

	cfg.Remote.BaseURL = GetEnv("REMOTE_BASE_URL", cfg.Remote.BaseURL)
	cfg.Remote.Timeout = GetEnvAsDuration("REMOTE_TIMEOUT", cfg.Remote.Timeout)

	cfg.Broker.URL = GetEnv("RABBITMQ_URL", cfg.Broker.URL)
	cfg.Broker.Exchange = GetEnv("RABBITMQ_EXCHANGE", cfg.Broker.Exchange)

	cfg.Auth.JWTSecret = GetEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = GetEnvAsDuration("TOKEN_TTL", cfg.Auth.TokenTTL)
	cfg.Auth.AdminUsername = GetEnv("ADMIN_USERNAME", cfg.Auth.AdminUsername)
	cfg.Auth.AdminPassword = GetEnv("ADMIN_PASSWORD", cfg.Auth.AdminPassword)
	cfg.Auth.DeletePassword = GetEnv("DELETE_PASSWORD", cfg.Auth.DeletePassword)

	cfg.Log.Level = GetEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = GetEnv("LOG_FORMAT", cfg.Log.Format)
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "redis", "mysql":
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: jwt secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: token ttl must be positive")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("config: port is required")
	}
	return nil
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(GetEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
