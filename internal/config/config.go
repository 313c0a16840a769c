// Package config loads server configuration from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultReconcileSchedule is used when no schedule is configured.
const DefaultReconcileSchedule = "@every 15m"

// Config is the server configuration. File values are overridden by environment
// variables, which are overridden by command-line flags.
type Config struct {
	Port          int    `yaml:"port"`
	DatabaseURL   string `yaml:"database_url"`
	UploadDir     string `yaml:"upload_dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	// CORSOrigin is the frontend origin allowed to send credentialed requests.
	CORSOrigin   string `yaml:"cors_origin"`
	CookieSecure bool   `yaml:"cookie_secure"`
	CompanyName  string `yaml:"company_name"`
	// ReconcileSchedule is a cron spec; empty disables scheduled repair.
	ReconcileSchedule string `yaml:"reconcile_schedule"`

	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	LLM       LLMConfig       `yaml:"llm"`
}

// AuthConfig holds session and password hashing settings. See JWT and Passwords.
type AuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`
	SessionHours int    `yaml:"session_hours"`
	CookieName   string `yaml:"cookie_name"`
	BcryptCost   int    `yaml:"bcrypt_cost"`
	// Pepper is appended to every password before hashing. Changing it
	// invalidates all stored hashes.
	Pepper string `yaml:"pepper"`
}

// RateLimitConfig tunes the per-client request limiter. Zero values take the
// limiter's defaults.
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled"`
	Limit   int           `yaml:"limit"`
	Window  time.Duration `yaml:"window"`
	Allow   []string      `yaml:"allow"`
	Deny    []string      `yaml:"deny"`
}

// SMTPConfig holds outgoing mail settings. Mail is logged instead of sent when Host is empty.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	StartTLS bool   `yaml:"starttls"`
}

// LLMConfig selects the match-scoring model. Scoring is disabled without an API key.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:              8080,
		UploadDir:         "uploads",
		PublicBaseURL:     "http://localhost:8080",
		CORSOrigin:        "http://localhost:3000",
		CompanyName:       "Hiring",
		ReconcileSchedule: DefaultReconcileSchedule,
		Auth:              AuthConfig{SessionHours: 24, CookieName: DefaultCookieName, BcryptCost: 12},
		RateLimit:         RateLimitConfig{Enabled: true},
		SMTP:              SMTPConfig{Port: 587},
	}
}

// Load reads path (if non-empty) over the defaults, then applies the environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.UploadDir, "UPLOAD_DIR")
	setString(&c.PublicBaseURL, "PUBLIC_BASE_URL")
	setString(&c.CORSOrigin, "CORS_ORIGIN")
	setString(&c.CompanyName, "COMPANY_NAME")
	// An empty RECONCILE_SCHEDULE is meaningful: it disables the schedule.
	if v, ok := os.LookupEnv("RECONCILE_SCHEDULE"); ok {
		c.ReconcileSchedule = strings.TrimSpace(v)
	}
	errs = append(errs, setInt(&c.Port, "PORT"), setBool(&c.CookieSecure, "COOKIE_SECURE"))

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.CookieName, "SESSION_COOKIE_NAME")
	setString(&c.Auth.Pepper, "PASSWORD_PEPPER")
	errs = append(errs, setInt(&c.Auth.SessionHours, "JWT_EXPIRATION_HOURS"), setInt(&c.Auth.BcryptCost, "BCRYPT_COST"))

	errs = append(errs,
		setBool(&c.RateLimit.Enabled, "RATE_LIMIT_ENABLED"),
		setInt(&c.RateLimit.Limit, "RATE_LIMIT_DEFAULT_LIMIT"),
		setDuration(&c.RateLimit.Window, "RATE_LIMIT_WINDOW"),
	)
	setList(&c.RateLimit.Allow, "RATE_LIMIT_WHITELIST")
	setList(&c.RateLimit.Deny, "RATE_LIMIT_BLACKLIST")

	setString(&c.SMTP.Host, "SMTP_HOST")
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "SMTP_FROM")
	errs = append(errs, setInt(&c.SMTP.Port, "SMTP_PORT"), setBool(&c.SMTP.StartTLS, "SMTP_STARTTLS"))

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	setString(&c.LLM.APIKey, "LLM_API_KEY")

	return errors.Join(errs...)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: database_url (DATABASE_URL) is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be 1-65535, got %d", c.Port)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("config error: upload_dir must not be empty")
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("config error: smtp.from (SMTP_FROM) is required when smtp.host is set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = d
	return nil
}

// setList reads a comma-separated list, dropping blanks.
func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
