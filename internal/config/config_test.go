package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := New()
	cfg.App.FeedURLs = []FeedURL{{Name: "Example", URL: "https://feed.example.com/images"}}
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"logger": {"level": "debug"},
		"app": {"feed_urls": [{"name": "Example", "url": "https://feed.example.com/images"}]},
		"store": {"driver": "postgres", "database": {"username": "feed", "password": "secret"}}
	}`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "localhost", cfg.Store.Database.Host)
	assert.Equal(t, "3m", cfg.App.ProcessingInterval)
	require.Len(t, cfg.App.FeedURLs, 1)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	assert.Equal(t, New(), cfg)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"logger": `)

	cfg, err := Load(path)

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `{"logger": {"level": "debug"}}`)
	t.Setenv("ESSENTIALFEED_LOGGER_LEVEL", "warn")
	t.Setenv("ESSENTIALFEED_HTTP_CLIENT_USER_AGENT", "feed-bot")
	t.Setenv("ESSENTIALFEED_STORE_DATABASE_PORT", "6543")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "feed-bot", cfg.HTTPClient.UserAgent)
	assert.Equal(t, 6543, cfg.Store.Database.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "no feeds", mutate: func(c *Config) { c.App.FeedURLs = nil }, wantErr: "app.feed_urls must not be empty"},
		{name: "bad feed url", mutate: func(c *Config) { c.App.FeedURLs[0].URL = "not a url" }, wantErr: "invalid url"},
		{name: "empty feed name", mutate: func(c *Config) { c.App.FeedURLs[0].Name = "" }, wantErr: "feed name cannot be empty"},
		{name: "bad interval", mutate: func(c *Config) { c.App.ProcessingInterval = "often" }, wantErr: "invalid app.processing_interval"},
		{name: "bad timeout", mutate: func(c *Config) { c.HTTPClient.Timeout = "soon" }, wantErr: "invalid http_client.timeout"},
		{name: "no concurrency", mutate: func(c *Config) { c.App.MaxConcurrentFeeds = 0 }, wantErr: "max_concurrent_feeds"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: "unknown store.driver"},
		{name: "postgres without user", mutate: func(c *Config) { c.Store.Driver = StoreDriverPostgres }, wantErr: "store.database.username is not set"},
		{name: "bad eviction", mutate: func(c *Config) { c.Store.Eviction = "forever" }, wantErr: "invalid store.eviction"},
		{name: "zero interval", mutate: func(c *Config) { c.App.ProcessingInterval = "0s" }, wantErr: "invalid app.processing_interval: must be positive"},
		{name: "negative interval", mutate: func(c *Config) { c.App.ProcessingInterval = "-1m" }, wantErr: "invalid app.processing_interval: must be positive"},
		{name: "zero feed timeout", mutate: func(c *Config) { c.App.FeedTimeout = "0s" }, wantErr: "invalid app.feed_timeout: must be positive"},
		{name: "negative http timeout", mutate: func(c *Config) { c.HTTPClient.Timeout = "-5s" }, wantErr: "invalid http_client.timeout: must be positive"},
		{name: "zero eviction", mutate: func(c *Config) { c.Store.Eviction = "0s" }, wantErr: "invalid store.eviction: must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, Username: "feed", Password: "p@ss", DBName: "feeds", SSLMode: "disable"}

	assert.Equal(t, "postgres://feed:p%40ss@db:5432/feeds?sslmode=disable", db.DSN())
}
