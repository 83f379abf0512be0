// Package config loads application settings from YAML and the environment.
package config

import (
	"fmt"
	"time"

	"github.com/japaniel/conjugador/pkg/scrape"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Batch    BatchConfig    `yaml:"batch"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"conjugador.db"`
}

// AuthConfig guards the JSON API.
type AuthConfig struct {
	APIKey   string `yaml:"api_key"  env:"API_KEY"`
	Disabled bool   `yaml:"disabled" env:"AUTH_DISABLED" env-default:"false"`
}

// ScrapeConfig configures both source adapters.
type ScrapeConfig struct {
	PrimaryBaseURL string        `yaml:"primary_base_url" env:"SCRAPE_PRIMARY_BASE_URL" env-default:"https://www.conjugacao.com.br/"`
	BackupBaseURL  string        `yaml:"backup_base_url"  env:"SCRAPE_BACKUP_BASE_URL"  env-default:"https://cooljugator.com/pt/"`
	Timeout        time.Duration `yaml:"timeout"          env:"SCRAPE_TIMEOUT"          env-default:"10s"`
	UserAgent      string        `yaml:"user_agent"       env:"SCRAPE_USER_AGENT"`
}

// Primary returns the primary adapter config.
func (s ScrapeConfig) Primary() scrape.Config {
	return scrape.Config{BaseURL: s.PrimaryBaseURL, Timeout: s.Timeout, UserAgent: s.UserAgent}
}

// Backup returns the backup adapter config.
func (s ScrapeConfig) Backup() scrape.Config {
	return scrape.Config{BaseURL: s.BackupBaseURL, Timeout: s.Timeout, UserAgent: s.UserAgent}
}

// BatchConfig bounds batch concurrency and per-task delay.
type BatchConfig struct {
	Workers   int           `yaml:"workers"    env:"BATCH_WORKERS"    env-default:"3"`
	JitterMin time.Duration `yaml:"jitter_min" env:"BATCH_JITTER_MIN" env-default:"300ms"`
	JitterMax time.Duration `yaml:"jitter_max" env:"BATCH_JITTER_MAX" env-default:"1s"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
