package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"shopping-list/internal/models"
)

const insecureSecret = "your-secret-key-change-this"

// Config собирается в три слоя: значения по умолчанию, TOML-файл (если есть), переменные окружения.
type Config struct {
	Addr         string `toml:"addr"          env:"SHOPPING_ADDR"`
	DatabasePath string `toml:"database_path" env:"SHOPPING_DATABASE_PATH"`

	Username   string        `toml:"username"    env:"SHOPPING_USERNAME"`
	Password   string        `toml:"password"    env:"SHOPPING_PASSWORD"`
	SecretKey  string        `toml:"secret_key"  env:"SECRET_KEY"`
	SessionTTL time.Duration `toml:"session_ttl" env:"SHOPPING_SESSION_TTL"`

	ForceHTTPS bool   `toml:"force_https" env:"SHOPPING_FORCE_HTTPS"`
	CertFile   string `toml:"ssl_cert"    env:"SHOPPING_SSL_CERT"`
	KeyFile    string `toml:"ssl_key"     env:"SHOPPING_SSL_KEY"`

	SortOrder models.SortOrder `toml:"sort_order" env:"SHOPPING_SORT_ORDER"`
	LogLevel  string           `toml:"log_level"  env:"SHOPPING_LOG_LEVEL"`

	TelegramToken   string  `toml:"telegram_token"   env:"SHOPPING_TELEGRAM_TOKEN"`
	TelegramAllowed []int64 `toml:"telegram_allowed" env:"SHOPPING_TELEGRAM_ALLOWED" envSeparator:","`
}

func Default() Config {
	return Config{
		Addr:         ":7666",
		DatabasePath: "shopping_list.db",
		Username:     "admin",
		Password:     "password123",
		SecretKey:    insecureSecret,
		SessionTTL:   30 * 24 * time.Hour,
		ForceHTTPS:   true,
		CertFile:     "certs/cert.pem",
		KeyFile:      "certs/key.pem",
		SortOrder:    models.SortPendingFirst,
		LogLevel:     "info",
	}
}

// Load читает конфигурацию. Пустой path или отсутствующий файл не считаются ошибкой.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadToml(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	// toml сам разбирает длительности вида "720h".
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Username = strings.TrimSpace(c.Username)
	c.SortOrder = models.SortOrder(strings.ToLower(strings.TrimSpace(string(c.SortOrder))))
	if c.SortOrder == "" {
		c.SortOrder = models.SortPendingFirst
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if !c.SortOrder.Valid() {
		return fmt.Errorf("unknown sort order %q (want %q or %q)", c.SortOrder, models.SortPendingFirst, models.SortOldestFirst)
	}
	return nil
}

// InsecureSecret сообщает, что SECRET_KEY не менялся с заводского значения.
func (c Config) InsecureSecret() bool {
	return c.SecretKey == insecureSecret
}

// TLSEnabled: оба файла сертификата существуют.
func (c Config) TLSEnabled() bool {
	if c.CertFile == "" || c.KeyFile == "" {
		return false
	}
	if _, err := os.Stat(c.CertFile); err != nil {
		return false
	}
	if _, err := os.Stat(c.KeyFile); err != nil {
		return false
	}
	return true
}

func (c Config) TelegramChatAllowed(chatID int64) bool {
	if len(c.TelegramAllowed) == 0 {
		return true
	}
	for _, id := range c.TelegramAllowed {
		if id == chatID {
			return true
		}
	}
	return false
}
