// Package config reads process settings from the environment, optionally
// seeded from a .env file, and the poll texts from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
	"github.com/vncsmyrnk/weeklypoll/internal/core/render"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	BotToken      string
	ChatID        int64
	OwnerID       string
	WebhookURL    string
	WebhookSecret string
	Port          string

	Store     string
	StorePath string
	Postgres  PostgresConfig
	Redis     RedisConfig

	ResetSchedule  string
	Timezone       string
	PollConfigPath string
	Poll           PollTexts

	LogLevel string
	DedupTTL time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

// ConnString uses the same URL form as the migrations tool.
func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.DB)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// PollTexts customizes the poll message. Labels are keyed by option tag.
type PollTexts struct {
	Title  string            `yaml:"title"`
	Labels map[string]string `yaml:"labels"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		BotToken:      env("BOT_TOKEN", ""),
		OwnerID:       env("OWNER_ID", ""),
		WebhookURL:    strings.TrimSuffix(env("WEBHOOK_URL", env("RENDER_EXTERNAL_URL", "")), "/"),
		WebhookSecret: env("WEBHOOK_SECRET", ""),
		Port:          env("PORT", "10000"),
		Store:         strings.ToLower(env("STORE", StoreFile)),
		StorePath:     env("STORE_PATH", ""),
		Postgres: PostgresConfig{
			Host:     env("POSTGRES_HOST", "localhost"),
			Port:     env("POSTGRES_PORT", "5432"),
			User:     env("POSTGRES_USER", ""),
			Password: env("POSTGRES_PASSWORD", ""),
			DB:       env("POSTGRES_DB", ""),
		},
		Redis: RedisConfig{
			Addr:     env("REDIS_ADDR", "localhost:6379"),
			Password: env("REDIS_PASSWORD", ""),
			Prefix:   env("REDIS_PREFIX", "weeklypoll:"),
		},
		ResetSchedule:  env("RESET_SCHEDULE", "0 0 18 * * SUN"),
		Timezone:       env("TIMEZONE", ""),
		PollConfigPath: env("POLL_CONFIG", ""),
		LogLevel:       env("LOG_LEVEL", "info"),
	}

	if raw := env("CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: CHAT_ID %q is not a number", ErrInvalidConfig, raw)
		}
		cfg.ChatID = id
	}

	if raw := env("REDIS_DB", ""); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: REDIS_DB %q is not a number", ErrInvalidConfig, raw)
		}
		cfg.Redis.DB = db
	}

	ttl, err := time.ParseDuration(env("DEDUP_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("%w: DEDUP_TTL: %w", ErrInvalidConfig, err)
	}
	cfg.DedupTTL = ttl

	switch cfg.Store {
	case StoreMemory, StoreFile, StorePostgres, StoreRedis:
	default:
		return nil, fmt.Errorf("%w: unknown STORE %q", ErrInvalidConfig, cfg.Store)
	}

	if cfg.PollConfigPath != "" {
		texts, err := LoadPollTexts(cfg.PollConfigPath)
		if err != nil {
			return nil, err
		}
		cfg.Poll = *texts
	}

	return cfg, nil
}

// ValidateBot checks the settings the chat bot cannot run without.
func (c *Config) ValidateBot() error {
	var missing []string
	if c.BotToken == "" {
		missing = append(missing, "BOT_TOKEN")
	}
	if c.ChatID == 0 {
		missing = append(missing, "CHAT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Location resolves Timezone. Empty means the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: TIMEZONE: %w", ErrInvalidConfig, err)
	}
	return loc, nil
}

// LoadPollTexts reads the YAML poll texts file.
func LoadPollTexts(path string) (*PollTexts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read poll config: %w", err)
	}

	var texts PollTexts
	if err := yaml.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("%w: poll config %s: %w", ErrInvalidConfig, path, err)
	}
	for tag := range texts.Labels {
		if _, err := domain.ParseOption(tag); err != nil {
			return nil, fmt.Errorf("%w: poll config %s: %w", ErrInvalidConfig, path, err)
		}
	}
	return &texts, nil
}

// Renderer builds the renderer for the configured texts.
func (c *Config) Renderer() *render.Renderer {
	labels := make(render.Labels, len(c.Poll.Labels))
	for tag, label := range c.Poll.Labels {
		labels[domain.Option(tag)] = label
	}
	return render.NewRenderer(c.Poll.Title, labels)
}
