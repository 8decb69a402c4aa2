package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL           string   `yaml:"base_url"`            // backend root; the probe hits {base_url}/actuator/health
	Addr              string   `yaml:"api_addr"`            // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	LogDir            string   `yaml:"log_dir"`             // logs directory
	LogLevel          string   `yaml:"log_level"`           // debug, info, warn, error
	ProbeIntervalMS   int      `yaml:"probe_interval_ms"`   // periodic re-probe while connected
	ProbeTimeoutMS    int      `yaml:"probe_timeout_ms"`    // hard limit per health request
	LinkPollMS        int      `yaml:"link_poll_ms"`        // how often interfaces are re-read
	InternetCheckHost string   `yaml:"internet_check_host"` // DNS name used for is_internet_reachable; empty disables
	SlackWebhookURL   string   `yaml:"slack_webhook_url"`   // empty disables Slack
	RabbitMQURL       string   `yaml:"rabbitmq_url"`        // empty means events are only logged
	AlertCooldownMS   int      `yaml:"alert_cooldown_ms"`   // minimum gap between two down alerts
	AlertOnRecovery   bool     `yaml:"alert_on_recovery"`   // send a message when the banner hides again
	PublicAPIKeys     []string `yaml:"public_api_keys"`     // may read status
	AdminAPIKeys      []string `yaml:"admin_api_keys"`      // may also force a refresh
	RefreshRPM        int      `yaml:"refresh_rpm"`         // refresh requests per minute per key
	RefreshBurst      int      `yaml:"refresh_burst"`       // bucket size for refresh
	HistorySize       int      `yaml:"history_size"`        // transitions kept in memory
	AllowedOrigins    []string `yaml:"allowed_origins"`     // CORS
}

func Default() Config {
	return Config{
		Addr:              "127.0.0.1:8080",
		LogDir:            "logs",
		LogLevel:          "info",
		ProbeIntervalMS:   30000,
		ProbeTimeoutMS:    5000,
		LinkPollMS:        2000,
		InternetCheckHost: "dns.google",
		AlertCooldownMS:   5 * 60 * 1000,
		AlertOnRecovery:   true,
		RefreshRPM:        6,
		RefreshBurst:      2,
		HistorySize:       500,
		AllowedOrigins:    []string{"*"},
	}
}

// Option is applied after the environment, e.g. for command line flags.
type Option func(*Config)

// WithBaseURL overrides base_url when u is not empty.
func WithBaseURL(u string) Option {
	return func(c *Config) {
		if u != "" {
			c.BaseURL = u
		}
	}
}

// Load reads the optional yaml file, then applies environment overrides,
// then opts. A missing file is not an error.
func Load(path string, opts ...Option) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.fillDefaults()
	return cfg, cfg.Validate()
}

// FromEnv is Load without a file.
func FromEnv() Config {
	cfg := Default()
	applyEnv(&cfg)
	cfg.fillDefaults()
	return cfg
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				*dst = n
			}
		}
	}
	list := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitCSV(v)
		}
	}

	str("NETWATCH_BASE_URL", &cfg.BaseURL)
	str("API_ADDR", &cfg.Addr)
	str("LOG_DIR", &cfg.LogDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	num("PROBE_INTERVAL_MS", &cfg.ProbeIntervalMS)
	num("PROBE_TIMEOUT_MS", &cfg.ProbeTimeoutMS)
	num("LINK_POLL_MS", &cfg.LinkPollMS)
	if v, ok := os.LookupEnv("INTERNET_CHECK_HOST"); ok {
		cfg.InternetCheckHost = strings.TrimSpace(v)
	}
	str("SLACK_WEBHOOK_URL", &cfg.SlackWebhookURL)
	str("RABBITMQ_URL", &cfg.RabbitMQURL)
	num("ALERT_COOLDOWN_MS", &cfg.AlertCooldownMS)
	if v := os.Getenv("ALERT_ON_RECOVERY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AlertOnRecovery = b
		}
	}
	list("PUBLIC_API_KEYS", &cfg.PublicAPIKeys)
	list("ADMIN_API_KEYS", &cfg.AdminAPIKeys)
	num("REFRESH_RPM", &cfg.RefreshRPM)
	num("REFRESH_BURST", &cfg.RefreshBurst)
	num("HISTORY_SIZE", &cfg.HistorySize)
	list("ALLOWED_ORIGINS", &cfg.AllowedOrigins)
}

func (c *Config) fillDefaults() {
	d := Default()
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.LogDir == "" {
		c.LogDir = d.LogDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.ProbeIntervalMS <= 0 {
		c.ProbeIntervalMS = d.ProbeIntervalMS
	}
	if c.ProbeTimeoutMS <= 0 {
		c.ProbeTimeoutMS = d.ProbeTimeoutMS
	}
	if c.LinkPollMS <= 0 {
		c.LinkPollMS = d.LinkPollMS
	}
	if c.RefreshRPM <= 0 {
		c.RefreshRPM = d.RefreshRPM
	}
	if c.RefreshBurst <= 0 {
		c.RefreshBurst = d.RefreshBurst
	}
	if c.HistorySize <= 0 {
		c.HistorySize = d.HistorySize
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = d.AllowedOrigins
	}
}

// Validate checks the fields that have no usable default.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required (set NETWATCH_BASE_URL or --base-url)")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", c.BaseURL)
	}
	return nil
}

func (c Config) ProbeInterval() time.Duration { return ms(c.ProbeIntervalMS) }
func (c Config) ProbeTimeout() time.Duration  { return ms(c.ProbeTimeoutMS) }
func (c Config) LinkPoll() time.Duration      { return ms(c.LinkPollMS) }
func (c Config) AlertCooldown() time.Duration { return ms(c.AlertCooldownMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
