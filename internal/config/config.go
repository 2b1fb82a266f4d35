package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const appName = "jobclock"

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// HTTP API settings
	Server ServerConfig `yaml:"server"`

	// Change notifications (optional)
	Redis RedisConfig `yaml:"redis"`

	Log LogConfig `yaml:"log"`

	// Local draft stopwatch snapshots
	Draft DraftConfig `yaml:"draft"`

	// Identity used by the CLI and TUI
	User UserConfig `yaml:"user"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver" env:"JOBCLOCK_DB_DRIVER"`   // sqlite or postgres
	Path        string `yaml:"path" env:"JOBCLOCK_DB_PATH"`       // Path to SQLite database
	Encrypt     bool   `yaml:"encrypt" env:"JOBCLOCK_DB_ENCRYPT"` // SQLCipher with a keyring password
	PostgresDSN string `yaml:"postgres_dsn" env:"JOBCLOCK_POSTGRES_DSN"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"JOBCLOCK_API_ADDR"`
	PollInterval time.Duration `yaml:"poll_interval" env:"JOBCLOCK_POLL_INTERVAL"` // client resync period
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"JOBCLOCK_REDIS_ADDR"` // empty disables notifications
	Password string `yaml:"password" env:"JOBCLOCK_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"JOBCLOCK_REDIS_DB"`
}

type LogConfig struct {
	Level       string `yaml:"level" env:"JOBCLOCK_LOG_LEVEL"`
	Development bool   `yaml:"development" env:"JOBCLOCK_LOG_DEV"`
}

type DraftConfig struct {
	Dir string `yaml:"dir" env:"JOBCLOCK_DRAFT_DIR"`
}

type UserConfig struct {
	ID string `yaml:"id" env:"JOBCLOCK_USER"`
}

// DefaultConfigPath returns ~/.config/jobclock/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", appName)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := configDir()
	user := os.Getenv("USER")
	if user == "" {
		user = "local"
	}

	return &Config{
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    filepath.Join(dir, "jobclock.db"),
			Encrypt: true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			PollInterval: 6 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Draft: DraftConfig{
			Dir: filepath.Join(dir, "drafts"),
		},
		User: UserConfig{
			ID: user,
		},
	}
}

// Load loads config from the given path, or defaults if the file doesn't
// exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the database and draft directories
func (c *Config) EnsureDirectories() error {
	if c.Database.Driver != "postgres" {
		if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0755); err != nil {
			return err
		}
	}

	return os.MkdirAll(c.Draft.Dir, 0755)
}

// UsePostgres reports whether the job store lives in Postgres
func (c *Config) UsePostgres() bool {
	return c.Database.Driver == "postgres"
}
