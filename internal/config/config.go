package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "SCRAPERD_CONFIG"
	profileEnv    = "SCRAPERD_PROFILE"
	addrEnv       = "SCRAPERD_ADDR"
	logLevelEnv   = "SCRAPERD_LOG_LEVEL"

	databaseNameEnv     = "DATABASE_NAME"
	databaseUserEnv     = "DATABASE_USER"
	databasePasswordEnv = "DATABASE_PASSWORD"
	databaseHostEnv     = "DATABASE_HOST"
	databasePortEnv     = "DATABASE_PORT"

	openAIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv = "OPENAI_MODEL"
)

// Validation errors; any of them halts startup before the server binds.
var (
	ErrDatabaseIncomplete = errors.New("database name, user, password, host and port are all required")
	ErrProfileMissing     = errors.New("scraper profile is required")
	ErrOpenAIKeyMissing   = errors.New("openai api key is required for the agentic profile")
)

// Config holds all settings required across the application. It is built
// once at process entry and passed into each component; nothing reads the
// environment after startup.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig describes the HTTP boundary.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
}

// DSN renders the connection string consumed by pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.User, d.Password, d.Host, d.Port, d.Name)
}

// Duration parses yaml values like "45s" or "2m" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ScraperConfig selects the active profile and bounds the fetch path.
type ScraperConfig struct {
	Profile string `yaml:"profile"`
	// FetchTimeout caps every fetch, rendering session and agent call.
	FetchTimeout Duration `yaml:"fetchTimeout"`
	// Workers and QueueSize size the background dispatcher.
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queueSize"`
}

// OpenAIConfig wires the extraction agent.
type OpenAIConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// LoggingConfig tunes the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present), applies environment
// overrides and validates the result. A validation failure is fatal to
// startup; the process must not serve with partial configuration.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	override(&c.Server.Addr, addrEnv)
	override(&c.Scraper.Profile, profileEnv)
	override(&c.Logging.Level, logLevelEnv)

	override(&c.Database.Name, databaseNameEnv)
	override(&c.Database.User, databaseUserEnv)
	override(&c.Database.Password, databasePasswordEnv)
	override(&c.Database.Host, databaseHostEnv)
	override(&c.Database.Port, databasePortEnv)

	override(&c.OpenAI.APIKey, openAIKeyEnv)
	override(&c.OpenAI.Model, openAIModelEnv)
}

func override(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate enforces the configuration surface: full database settings
// always, the agent credential only when the agentic profile is active.
func (c Config) Validate() error {
	d := c.Database
	if d.Name == "" || d.User == "" || d.Password == "" || d.Host == "" || d.Port == "" {
		return ErrDatabaseIncomplete
	}
	if c.Scraper.Profile == "" {
		return ErrProfileMissing
	}
	if c.Scraper.Profile == "agentic" && c.OpenAI.APIKey == "" {
		return ErrOpenAIKeyMissing
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Scraper: ScraperConfig{
			Profile:      "static",
			FetchTimeout: Duration(30 * time.Second),
			Workers:      2,
			QueueSize:    16,
		},
		OpenAI:  OpenAIConfig{Model: "gpt-4o"},
		Logging: LoggingConfig{Level: "info"},
	}
}
