// Load envs from .env
// Load YAML config
// Override from env
// Provide default values

package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

// ErrMissingConfig is returned when a required setting is absent.
var ErrMissingConfig = errors.New("missing required configuration")

type Config struct {
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	LinkedIn LinkedInConfig `yaml:"linkedin"`

	//Logging and metrics
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
}

type LinkedInConfig struct {
	//Search criteria
	Keywords  string `yaml:"keywords"`
	Location  string `yaml:"location"`
	LimitJobs int    `yaml:"limit_jobs"`
	MaxPages  int    `yaml:"max_pages"`
	PageSize  int    `yaml:"page_size"`

	//Dismiss rules
	DismissKeywords  []string `yaml:"dismiss_keywords"`
	DismissCompanies []string `yaml:"dismiss_companies"`

	//Pacing
	DismissDelay time.Duration `yaml:"dismiss_delay"`
	PageDelay    time.Duration `yaml:"page_delay"`

	//Auth
	Cookies     string `yaml:"cookies" env:"LINKEDIN_COOKIES"`
	CookiesPath string `yaml:"cookies_path" env:"LINKEDIN_COOKIES_PATH"`
	BaseURL     string `yaml:"base_url"`
}

// Load reads .env, then the YAML file at path (DefaultPath when empty), then
// environment overrides. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides every field carrying an env tag with its non-empty
// environment value.
func (c *Config) applyEnv() error {
	return applyEnvTags(reflect.ValueOf(c).Elem())
}

func applyEnvTags(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, value := t.Field(i), v.Field(i)
		if value.Kind() == reflect.Struct {
			if err := applyEnvTags(value); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("env")
		if key == "" {
			continue
		}
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}

		switch value.Kind() {
		case reflect.String:
			value.SetString(raw)
		case reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			value.SetInt(n)
		default:
			return fmt.Errorf("unsupported env field %s (%s)", field.Name, value.Kind())
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LinkedIn.Location == "" {
		c.LinkedIn.Location = "Canada"
	}
	if c.LinkedIn.PageSize <= 0 {
		c.LinkedIn.PageSize = 25
	}
	if c.LinkedIn.DismissDelay == 0 {
		c.LinkedIn.DismissDelay = 2 * time.Second
	}
	if c.LinkedIn.PageDelay == 0 {
		c.LinkedIn.PageDelay = 3 * time.Second
	}
	if c.LinkedIn.CookiesPath == "" {
		c.LinkedIn.CookiesPath = ".cookies/cookies-linkedin.json"
	}
	if c.LinkedIn.BaseURL == "" {
		c.LinkedIn.BaseURL = "https://www.linkedin.com"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// Validate checks values that are wrong regardless of which tool runs.
func (c *Config) Validate() error {
	var problems []string
	if c.LinkedIn.LimitJobs < 0 {
		problems = append(problems, "linkedin.limit_jobs must be >= 0")
	}
	if c.LinkedIn.MaxPages < 0 {
		problems = append(problems, "linkedin.max_pages must be >= 0")
	}
	if c.LinkedIn.DismissDelay < 0 || c.LinkedIn.PageDelay < 0 {
		problems = append(problems, "linkedin delays must not be negative")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q must be console or json", c.LogFormat))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingConfig)
	}
	return nil
}

// RequireLinkedIn checks that some cookie source is configured. Whether the
// file actually holds cookies is checked when they are loaded.
func (c *Config) RequireLinkedIn() error {
	if c.LinkedIn.Cookies != "" {
		return nil
	}
	if _, err := os.Stat(c.LinkedIn.CookiesPath); err != nil {
		return fmt.Errorf("%w: LINKEDIN_COOKIES or cookies file %s", ErrMissingConfig, c.LinkedIn.CookiesPath)
	}
	return nil
}

// TelegramEnabled reports whether run summaries should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
