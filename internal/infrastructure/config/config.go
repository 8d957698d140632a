package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Sync      SyncConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	// PlatformHosts are the platform's own hostnames. Requests on any
	// other host are treated as custom store domains.
	PlatformHosts []string
}

// RateLimitConfig holds admission-control budgets per endpoint class.
// Sync budgets are per store and scale with the store's current tier;
// storefront traffic is limited per client IP, dashboard per store.
type RateLimitConfig struct {
	Enabled    bool
	Window     time.Duration
	Tier1Sync  int
	Tier2Sync  int
	Tier3Sync  int
	Tier4Sync  int
	Storefront int
	Dashboard  int
}

// SyncBudgetForTier returns the sync ingress budget for a tier number
func (r *RateLimitConfig) SyncBudgetForTier(tier int) int {
	switch tier {
	case 1:
		return r.Tier1Sync
	case 2:
		return r.Tier2Sync
	case 3:
		return r.Tier3Sync
	default:
		return r.Tier4Sync
	}
}

// SyncConfig holds batch ingestion settings
type SyncConfig struct {
	MaxBatchSize   int
	BatchTimeout   time.Duration // wall-clock budget for one batch
	StoreCacheTTL  time.Duration // tenant lookup cache TTL
	DefaultPageLen int           // sync log page size
}

// SchedulerConfig holds recurring-job settings
type SchedulerConfig struct {
	Enabled           bool
	TierEvalInterval  time.Duration
	RetentionInterval time.Duration
	RetentionAge      time.Duration
	JobTimeout        time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STORESYNC_ prefix (e.g. STORESYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Missing config file is fine, defaults and env vars cover it
	}

	v.SetEnvPrefix("STORESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			PlatformHosts:    v.GetStringSlice("http.platform_hosts"),
		},
		RateLimit: RateLimitConfig{
			Enabled:    v.GetBool("rate_limit.enabled"),
			Window:     v.GetDuration("rate_limit.window"),
			Tier1Sync:  v.GetInt("rate_limit.tier1_sync"),
			Tier2Sync:  v.GetInt("rate_limit.tier2_sync"),
			Tier3Sync:  v.GetInt("rate_limit.tier3_sync"),
			Tier4Sync:  v.GetInt("rate_limit.tier4_sync"),
			Storefront: v.GetInt("rate_limit.storefront"),
			Dashboard:  v.GetInt("rate_limit.dashboard"),
		},
		Sync: SyncConfig{
			MaxBatchSize:   v.GetInt("sync.max_batch_size"),
			BatchTimeout:   v.GetDuration("sync.batch_timeout"),
			StoreCacheTTL:  v.GetDuration("sync.store_cache_ttl"),
			DefaultPageLen: v.GetInt("sync.default_page_len"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			TierEvalInterval:  v.GetDuration("scheduler.tier_eval_interval"),
			RetentionInterval: v.GetDuration("scheduler.retention_interval"),
			RetentionAge:      v.GetDuration("scheduler.retention_age"),
			JobTimeout:        v.GetDuration("scheduler.job_timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storesync-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storesync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB, room for a 1000-record batch
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.PlatformHosts) == 0 {
		cfg.HTTP.PlatformHosts = []string{"localhost", "127.0.0.1"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Store-ID", "X-Sync-Secret"}
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.Tier1Sync == 0 {
		cfg.RateLimit.Tier1Sync = 60
	}
	if cfg.RateLimit.Tier2Sync == 0 {
		cfg.RateLimit.Tier2Sync = 30
	}
	if cfg.RateLimit.Tier3Sync == 0 {
		cfg.RateLimit.Tier3Sync = 10
	}
	if cfg.RateLimit.Tier4Sync == 0 {
		cfg.RateLimit.Tier4Sync = 5
	}
	if cfg.RateLimit.Storefront == 0 {
		cfg.RateLimit.Storefront = 120
	}
	if cfg.RateLimit.Dashboard == 0 {
		cfg.RateLimit.Dashboard = 300
	}
	if cfg.Sync.MaxBatchSize == 0 {
		cfg.Sync.MaxBatchSize = 1000
	}
	if cfg.Sync.BatchTimeout == 0 {
		cfg.Sync.BatchTimeout = 2 * time.Minute
	}
	if cfg.Sync.StoreCacheTTL == 0 {
		cfg.Sync.StoreCacheTTL = time.Hour
	}
	if cfg.Sync.DefaultPageLen == 0 {
		cfg.Sync.DefaultPageLen = 20
	}
	if cfg.Scheduler.TierEvalInterval == 0 {
		cfg.Scheduler.TierEvalInterval = time.Hour
	}
	if cfg.Scheduler.RetentionInterval == 0 {
		cfg.Scheduler.RetentionInterval = 24 * time.Hour
	}
	if cfg.Scheduler.RetentionAge == 0 {
		cfg.Scheduler.RetentionAge = 30 * 24 * time.Hour
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 10 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Sync.MaxBatchSize <= 0 {
		return fmt.Errorf("sync.max_batch_size must be positive")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
