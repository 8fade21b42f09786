package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix - префикс переменных окружения, переопределяющих конфигурацию.
const EnvPrefix = "ESSENTIALFEED"

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config представляет основную конфигурацию приложения.
type Config struct {
	Server     ServerConfig     `json:"server" envconfig:"SERVER"`
	Logger     LoggerConfig     `json:"logger" envconfig:"LOGGER"`
	App        AppConfig        `json:"app" envconfig:"APP"`
	HTTPClient HTTPClientConfig `json:"http_client" envconfig:"HTTP_CLIENT"`
	Store      StoreConfig      `json:"store" envconfig:"STORE"`
}

// ServerConfig содержит настройки служебного HTTP-сервера (health, metrics).
type ServerConfig struct {
	Address string `json:"address" envconfig:"ADDRESS"`
}

// LoggerConfig содержит настройки системы логирования.
// Пустые File и ErrorFile означают вывод в stdout и stderr.
type LoggerConfig struct {
	Level     string `json:"level" envconfig:"LEVEL"`
	File      string `json:"file" envconfig:"FILE"`
	ErrorFile string `json:"error_file" envconfig:"ERROR_FILE"`
}

// FeedURL представляет конфигурацию отдельной ленты.
type FeedURL struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AppConfig содержит список лент и параметры их периодического обновления.
type AppConfig struct {
	FeedURLs           []FeedURL `json:"feed_urls" ignored:"true"`
	ProcessingInterval string    `json:"processing_interval" envconfig:"PROCESSING_INTERVAL"`
	FeedTimeout        string    `json:"feed_timeout" envconfig:"FEED_TIMEOUT"`
	MaxConcurrentFeeds int       `json:"max_concurrent_feeds" envconfig:"MAX_CONCURRENT_FEEDS"`
}

// HTTPClientConfig содержит параметры HTTP-сессии.
type HTTPClientConfig struct {
	Timeout      string `json:"timeout" envconfig:"TIMEOUT"`
	UserAgent    string `json:"user_agent" envconfig:"USER_AGENT"`
	MaxBodyBytes int64  `json:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// StoreConfig выбирает хранилище лент.
type StoreConfig struct {
	Driver   string         `json:"driver" envconfig:"DRIVER"`
	Eviction string         `json:"eviction" envconfig:"EVICTION"`
	Database DatabaseConfig `json:"database" envconfig:"DATABASE"`
}

// DatabaseConfig содержит параметры подключения к PostgreSQL.
type DatabaseConfig struct {
	Host     string `json:"host" envconfig:"HOST"`
	Port     int    `json:"port" envconfig:"PORT"`
	Username string `json:"username" envconfig:"USERNAME"`
	Password string `json:"password" envconfig:"PASSWORD"`
	DBName   string `json:"dbname" envconfig:"DBNAME"`
	SSLMode  string `json:"sslmode" envconfig:"SSLMODE"`
}

// DSN возвращает строку подключения к PostgreSQL в формате URI.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode)
}

// Load собирает конфигурацию: значения по умолчанию, затем JSON-файл
// (если он существует), затем .env и переменные окружения с префиксом EnvPrefix.
func Load(configPath string) (*Config, error) {
	cfg := New()
	fileData, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	default:
		if err := json.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON from file %s: %w", configPath, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return cfg, nil
}

// New создает новый экземпляр Config со значениями по умолчанию.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		App: AppConfig{
			ProcessingInterval: "3m",
			FeedTimeout:        "30s",
			MaxConcurrentFeeds: 4,
			FeedURLs:           []FeedURL{},
		},
		HTTPClient: HTTPClientConfig{
			Timeout:      "20s",
			UserAgent:    "essentialfeed",
			MaxBodyBytes: 10 << 20,
		},
		Store: StoreConfig{
			Driver:   StoreDriverMemory,
			Eviction: "24h",
			Database: DatabaseConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
	}
}

// Validate проверяет корректность конфигурации и возвращает первую найденную проблему.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Store.Database.Host == "" {
			return fmt.Errorf("store.database.host is not set")
		}
		if c.Store.Database.Username == "" {
			return fmt.Errorf("store.database.username is not set")
		}
		if c.Store.Database.Password == "" {
			return fmt.Errorf("store.database.password is not set")
		}
	case StoreDriverMemory:
		if err := positiveDuration("store.eviction", c.Store.Eviction); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if len(c.App.FeedURLs) == 0 {
		return fmt.Errorf("app.feed_urls must not be empty")
	}
	for _, feed := range c.App.FeedURLs {
		if _, err := url.ParseRequestURI(feed.URL); err != nil {
			return fmt.Errorf("invalid url in app.feed_urls: %s", feed.URL)
		}
		if feed.Name == "" {
			return fmt.Errorf("feed name cannot be empty for url: %s", feed.URL)
		}
	}
	if c.App.MaxConcurrentFeeds <= 0 {
		return fmt.Errorf("app.max_concurrent_feeds must be a positive number")
	}
	if err := positiveDuration("app.processing_interval", c.App.ProcessingInterval); err != nil {
		return err
	}
	if err := positiveDuration("app.feed_timeout", c.App.FeedTimeout); err != nil {
		return err
	}
	if err := positiveDuration("http_client.timeout", c.HTTPClient.Timeout); err != nil {
		return err
	}
	if c.HTTPClient.MaxBodyBytes < 0 {
		return fmt.Errorf("http_client.max_body_bytes must not be negative")
	}
	return nil
}

func positiveDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s: must be positive, got %s", field, value)
	}
	return nil
}
