package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // feed timezones must resolve on minimal images

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFeedTimeoutMS bounds a single live feed request when no valid timeout is configured.
const DefaultFeedTimeoutMS = 5000

// DefaultCacheTTLSeconds applies when server.cache_ttl_seconds is not set.
const DefaultCacheTTLSeconds = 5

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Feed       FeedConfig       `yaml:"feed"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Simulator  SimulatorConfig  `yaml:"simulator"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds *int    `yaml:"cache_ttl_seconds"`
}

// CacheTTL is the response cache lifetime. Zero or negative settings disable
// caching; an unset key uses DefaultCacheTTLSeconds.
func (s ServerConfig) CacheTTL() time.Duration {
	if s.CacheTTLSeconds == nil {
		return DefaultCacheTTLSeconds * time.Second
	}
	if *s.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(*s.CacheTTLSeconds) * time.Second
}

// FeedConfig describes the external live occupancy feed. An empty URL turns live mode off.
type FeedConfig struct {
	URL          string         `yaml:"url"`
	APIKey       string         `yaml:"api_key"`
	APIKeyHeader string         `yaml:"api_key_header"`
	TimeoutMS    int            `yaml:"timeout_ms"`
	Timeout      time.Duration  `yaml:"-"` // Derived from TimeoutMS
	Timezone     string         `yaml:"timezone"`
	Location     *time.Location `yaml:"-"` // Derived from Timezone
	HTTPProxy    string         `yaml:"http_proxy"`
}

// SimulatorConfig controls the random-walk fallback used by the refresh endpoint.
type SimulatorConfig struct {
	Enabled     *bool   `yaml:"enabled"`
	Fluctuation float64 `yaml:"fluctuation"`
}

// On reports whether the simulator is enabled. It defaults to true.
func (s SimulatorConfig) On() bool {
	return s.Enabled == nil || *s.Enabled
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
	Seed                   *bool  `yaml:"seed"`
}

// SeedEnabled reports whether demo data should be written into empty tables. It defaults to true.
func (d DatabaseConfig) SeedEnabled() bool {
	return d.Seed == nil || *d.Seed
}

// Load reads the configuration from the given path, overlays environment
// variables (after loading a .env file when one exists) and applies defaults.
// A missing file is not an error; every setting has a default.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		log.Printf("Config file %s not found; using environment and defaults", path)
	default:
		return nil, err
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Feed.URL, "PARKKEAN_LIVE_API_URL")
	setString(&cfg.Feed.APIKey, "PARKKEAN_LIVE_API_KEY")
	setString(&cfg.Feed.APIKeyHeader, "PARKKEAN_LIVE_API_KEY_HEADER")
	setString(&cfg.Feed.Timezone, "PARKKEAN_LIVE_TIMEZONE")
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setString(&cfg.Push.PublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Push.PrivateKey, "VAPID_PRIVATE_KEY")

	if v, ok := lookupEnv("PARKKEAN_LIVE_TIMEOUT_MS"); ok {
		ms, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("Warning: invalid PARKKEAN_LIVE_TIMEOUT_MS %q; using %dms", v, DefaultFeedTimeoutMS)
			ms = 0
		}
		cfg.Feed.TimeoutMS = ms
	}

	if v, ok := lookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Server.Port = port
	}
	return nil
}

func applyDefaults(cfg *Config) {
	cfg.Feed.URL = strings.TrimSpace(cfg.Feed.URL)
	if strings.TrimSpace(cfg.Feed.APIKeyHeader) == "" {
		cfg.Feed.APIKeyHeader = "Authorization"
	}
	if cfg.Feed.TimeoutMS <= 0 {
		cfg.Feed.TimeoutMS = DefaultFeedTimeoutMS
	}
	cfg.Feed.Timeout = time.Duration(cfg.Feed.TimeoutMS) * time.Millisecond

	if cfg.Feed.Timezone == "" {
		cfg.Feed.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Feed.Timezone)
	if err != nil {
		log.Printf("Warning: unknown feed timezone %q: %v. Falling back to UTC.", cfg.Feed.Timezone, err)
		loc = time.UTC
	}
	cfg.Feed.Location = loc

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "sqlite:./data/parkkean.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Simulator.Fluctuation <= 0 {
		cfg.Simulator.Fluctuation = 0.05
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 100
	}
}

func setString(dst *string, key string) {
	if v, ok := lookupEnv(key); ok {
		*dst = v
	}
}

// lookupEnv treats variables set to blank as unset.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}
