package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avilchesko/betsheet/internal/pkg/validation"
)

// Duration decodes "15s"-style yaml scalars. yaml.v3 cannot unmarshal a
// string scalar into time.Duration directly, so config fields use this
// wrapper and callers unwrap with Std.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Dedupe   DedupeConfig   `yaml:"dedupe"`
	Journal  JournalConfig  `yaml:"journal"`
	Health   HealthConfig   `yaml:"health"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
	// WebhookBaseURL is kept for webhook deployments; the default runner
	// uses long polling.
	WebhookBaseURL string  `yaml:"webhook_base_url"`
	UpdateTimeout  int     `yaml:"update_timeout"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids"`
}

type SheetsConfig struct {
	WebAppURL    string   `yaml:"webapp_url"`
	Timeout      Duration `yaml:"timeout"`
	CommitPolicy string   `yaml:"commit_policy"` // incremental | deferred
	DefaultStake float64  `yaml:"default_stake"`
	ReadCell     string   `yaml:"read_cell"`
	// SuggestAllowedUserIDs restricts /apuesta; empty allows everyone.
	SuggestAllowedUserIDs []int64 `yaml:"suggest_allowed_user_ids"`
}

type DedupeConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	TTLDays   int    `yaml:"ttl_days"`
	Namespace string `yaml:"namespace"`
}

func (d DedupeConfig) TTL() time.Duration {
	return time.Duration(d.TTLDays) * 24 * time.Hour
}

type JournalConfig struct {
	// DSN enables the local Postgres audit journal; empty disables it.
	DSN string `yaml:"dsn"`
}

type HealthConfig struct {
	Addr string `yaml:"addr"`
}

func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyEnv lets deployment secrets override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("WEBHOOK_BASE_URL"); v != "" {
		c.Telegram.WebhookBaseURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("SHEETS_WEBAPP_URL"); v != "" {
		c.Sheets.WebAppURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHEETS_READ_CELL"); v != "" {
		c.Sheets.ReadCell = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Dedupe.Addr = v
		c.Dedupe.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Dedupe.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Journal.DSN = v
	}
	if v := os.Getenv("MEMORY_TTL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Dedupe.TTLDays = n
		}
	}
	if v := os.Getenv("MEMORY_NAMESPACE"); v != "" {
		c.Dedupe.Namespace = v
	}
}

func (c *Config) applyDefaults() {
	if c.Telegram.UpdateTimeout <= 0 {
		c.Telegram.UpdateTimeout = 60
	}
	if c.Sheets.Timeout <= 0 {
		c.Sheets.Timeout = Duration(15 * time.Second)
	}
	if c.Sheets.CommitPolicy == "" {
		c.Sheets.CommitPolicy = "incremental"
	}
	if c.Sheets.DefaultStake <= 0 {
		c.Sheets.DefaultStake = 1.0
	}
	if c.Sheets.ReadCell == "" {
		c.Sheets.ReadCell = "J1"
	}
	if c.Dedupe.TTLDays <= 0 {
		c.Dedupe.TTLDays = 30
	}
	if c.Dedupe.Namespace == "" {
		c.Dedupe.Namespace = "ingestador:v1"
	}
	if c.Health.Addr == "" {
		c.Health.Addr = ":8081"
	}
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (telegram.token or TELEGRAM_BOT_TOKEN)")
	}
	if c.Sheets.WebAppURL == "" {
		return fmt.Errorf("sheets web app URL is required (sheets.webapp_url or SHEETS_WEBAPP_URL)")
	}
	if !validation.ValidCellRef(c.Sheets.ReadCell) {
		return fmt.Errorf("sheets.read_cell %q is not a valid cell address", c.Sheets.ReadCell)
	}
	if c.Dedupe.Enabled && c.Dedupe.Addr == "" {
		return fmt.Errorf("dedupe.addr is required when dedupe is enabled")
	}
	return nil
}
