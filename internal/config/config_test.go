package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, "0 0 18 * * SUN", cfg.ResetSchedule)
	assert.Equal(t, 10*time.Minute, cfg.DedupTTL)
	assert.Equal(t, "weeklypoll:", cfg.Redis.Prefix)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.ChatID)
}

func TestFromEnv_Values(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"BOT_TOKEN":      "123:abc",
		"CHAT_ID":        "-1001234",
		"OWNER_ID":       "42",
		"WEBHOOK_URL":    "https://bot.example.com/",
		"PORT":           "8080",
		"STORE":          "Redis",
		"REDIS_ADDR":     "cache:6379",
		"REDIS_DB":       "2",
		"DEDUP_TTL":      "30s",
		"POSTGRES_USER":  "poll",
		"POSTGRES_DB":    "weekly",
		"POSTGRES_HOST":  "db",
		"RESET_SCHEDULE": "0 0 9 * * MON",
	}))
	require.NoError(t, err)

	assert.Equal(t, int64(-1001234), cfg.ChatID)
	assert.Equal(t, "https://bot.example.com", cfg.WebhookURL)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, RedisConfig{Addr: "cache:6379", DB: 2, Prefix: "weeklypoll:"}, cfg.Redis)
	assert.Equal(t, 30*time.Second, cfg.DedupTTL)
	assert.Equal(t, "postgres://poll:@db:5432/weekly?sslmode=disable", cfg.Postgres.ConnString())
	assert.NoError(t, cfg.ValidateBot())
}

func TestFromEnv_RenderExternalURLFallback(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"RENDER_EXTERNAL_URL": "https://x.onrender.com"}))
	require.NoError(t, err)
	assert.Equal(t, "https://x.onrender.com", cfg.WebhookURL)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"chat id":   {"CHAT_ID": "general"},
		"redis db":  {"REDIS_DB": "one"},
		"dedup ttl": {"DEDUP_TTL": "soon"},
		"store":     {"STORE": "s3"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidateBot(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	err = cfg.ValidateBot()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "BOT_TOKEN, CHAT_ID")
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPollTexts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poll.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Training days\nlabels:\n  mon: Montag\n  sun: Sonntag\n"), 0o644))

	cfg, err := FromEnv(envOf(map[string]string{"POLL_CONFIG": path}))
	require.NoError(t, err)
	assert.Equal(t, "Training days", cfg.Poll.Title)

	r := cfg.Renderer()
	assert.Equal(t, "Montag", r.Label(domain.Monday))
	assert.Equal(t, "Tuesday", r.Label(domain.Tuesday))
	assert.Contains(t, r.Text(domain.Reset()), "Training days\n\nMontag (0): –")
}

func TestPollTexts_UnknownOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poll.yaml")
	require.NoError(t, os.WriteFile(path, []byte("labels:\n  holiday: Feiertag\n"), 0o644))

	_, err := LoadPollTexts(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}

func TestPollTexts_Missing(t *testing.T) {
	_, err := LoadPollTexts(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
