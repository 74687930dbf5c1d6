// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultArchiveLeaguesCron  = "15 3 * * *"
	defaultJoinMaxFailures     = 5
	defaultJoinLockoutDuration = 15 * time.Minute
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AuthConfig struct {
	// RequireSession makes membership endpoints trust only the Clerk session, not the body userId.
	RequireSession bool   `yaml:"require_session"`
	SignInURL      string `yaml:"sign_in_url"`
	ClerkSecretKey string `yaml:"-"` // Loaded from environment
}

type EmailConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type SchedulerConfig struct {
	ArchiveLeaguesCron string `yaml:"archive_leagues_cron"`
}

type RateLimitConfig struct {
	JoinMaxFailures     int           `yaml:"join_max_failures"`
	JoinMaxIPFailures   int           `yaml:"join_max_ip_failures"`
	JoinLockoutDuration time.Duration `yaml:"join_lockout_duration"`
	TrustProxy          bool          `yaml:"trust_proxy"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		SecretKey   string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Email     EmailConfig     `yaml:"email"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Auth.ClerkSecretKey = os.Getenv("CLERK_SECRET_KEY")
	cfg.Email.AccessKeyID = os.Getenv("AWS_SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SES_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML config and fills defaults. It does not read the environment or validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if strings.TrimSpace(c.Scheduler.ArchiveLeaguesCron) == "" {
		c.Scheduler.ArchiveLeaguesCron = defaultArchiveLeaguesCron
	}
	if c.RateLimit.JoinMaxFailures == 0 {
		c.RateLimit.JoinMaxFailures = defaultJoinMaxFailures
	}
	if c.RateLimit.JoinMaxIPFailures == 0 {
		c.RateLimit.JoinMaxIPFailures = c.RateLimit.JoinMaxFailures * 4
	}
	if c.RateLimit.JoinLockoutDuration == 0 {
		c.RateLimit.JoinLockoutDuration = defaultJoinLockoutDuration
	}
	if c.Auth.SignInURL == "" {
		c.Auth.SignInURL = "/login"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Auth.RequireSession && c.Auth.ClerkSecretKey == "" {
		return fmt.Errorf("clerk secret key is required when auth.require_session is enabled")
	}

	if c.Email.Enabled {
		if c.Email.Region == "" || c.Email.Sender == "" {
			return fmt.Errorf("email region and sender are required when email is enabled")
		}
	}

	if _, err := cron.ParseStandard(c.Scheduler.ArchiveLeaguesCron); err != nil {
		return fmt.Errorf("invalid scheduler.archive_leagues_cron %q: %w", c.Scheduler.ArchiveLeaguesCron, err)
	}

	if c.RateLimit.JoinMaxFailures < 0 || c.RateLimit.JoinMaxIPFailures < 0 {
		return fmt.Errorf("rate limit failure counts must not be negative")
	}
	if c.RateLimit.JoinLockoutDuration < 0 {
		return fmt.Errorf("rate limit lockout duration must not be negative")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
