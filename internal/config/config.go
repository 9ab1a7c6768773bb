// Package config provides the service's configuration: a YAML file overlaid
// with environment variables, following the same .env-then-YAML-then-env
// precedence the rest of the platform's services use.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the statistics service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
	Platform PlatformConfig `yaml:"platform"`
	Peers    PeersConfig    `yaml:"peers"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string        `yaml:"host" env:"HOST"`
	Port           int           `yaml:"port" env:"PORT"`
	Environment    string        `yaml:"environment" env:"NODE_ENV"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// Address returns the server address in host:port form.
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DatabaseConfig holds PostgreSQL configuration, sourced from a single DSN
// the way the rest of the platform's services consume DATABASE_URL.
type DatabaseConfig struct {
	URL             string        `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds the shared Redis connection used for both the stats
// cache and the event-bus streams.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
	DB  int    `yaml:"db"`
}

// EventsConfig configures the Redis-Streams-backed event bus.
type EventsConfig struct {
	Exchange      string `yaml:"exchange" env:"EVENT_EXCHANGE"`
	Stream        string `yaml:"stream"`
	DeadLetter    string `yaml:"dead_letter_stream"`
	ConsumerGroup string `yaml:"consumer_group"`
	Prefetch      int64  `yaml:"prefetch"`
	MaxDeliveries int64  `yaml:"max_deliveries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// PlatformConfig holds per-platform adapter settings.
type PlatformConfig struct {
	YouTubeAPIKey string `yaml:"youtube_api_key" env:"YOUTUBE_API_KEY"`
}

// PeersConfig holds the base URLs of peer services this service calls.
type PeersConfig struct {
	ClipServiceURL     string `yaml:"clip_service_url" env:"CLIP_SERVICE_URL"`
	CampaignServiceURL string `yaml:"campaign_service_url" env:"CAMPAIGN_SERVICE_URL"`
}

// AuthConfig holds authentication settings for the HTTP API.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

const (
	minJWTSecretLength = 16
	defaultPort        = 8080
	defaultReadTimeout = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultMaxOpenConns = 25
	defaultMaxIdleConns = 5
	defaultConnLifetime = 5 * time.Minute
	defaultPrefetch     = 10
	defaultMaxDeliveries = 3
)

// Load reads a YAML config file (if present) and applies environment
// variable overrides and defaults. A missing file is not an error: the
// service can run purely off environment variables.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, yamlErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	setDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "production"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnLifetime
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Events.Stream == "" {
		cfg.Events.Stream = "statistics.events"
	}
	if cfg.Events.DeadLetter == "" {
		cfg.Events.DeadLetter = "statistics.events.dlq"
	}
	if cfg.Events.ConsumerGroup == "" {
		cfg.Events.ConsumerGroup = "statistics-service"
	}
	if cfg.Events.Exchange == "" {
		cfg.Events.Exchange = "clipdeck.events"
	}
	if cfg.Events.Prefetch == 0 {
		cfg.Events.Prefetch = defaultPrefetch
	}
	if cfg.Events.MaxDeliveries == 0 {
		cfg.Events.MaxDeliveries = defaultMaxDeliveries
	}
}

// Validate enforces the startup-fatal constraints from the configuration
// variable table: required URLs and a JWT secret of sufficient length.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.Peers.ClipServiceURL == "" {
		return fmt.Errorf("CLIP_SERVICE_URL is required")
	}
	if c.Peers.CampaignServiceURL == "" {
		return fmt.Errorf("CAMPAIGN_SERVICE_URL is required")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

// applyEnvOverrides walks cfg's fields by the `env` struct tag, the same
// reflection-based override mechanism used across the platform's services.
func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envVal := os.Getenv(envTag)
		if envVal == "" {
			continue
		}
		setFieldFromString(field, envVal)
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Bool:
		field.SetBool(strings.EqualFold(val, "true") || val == "1")
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			for i, p := range parts {
				parts[i] = strings.TrimSpace(p)
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
}
