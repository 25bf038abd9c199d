package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig              `mapstructure:"server"`
	Database     DatabaseConfig            `mapstructure:"database"`
	Redis        RedisConfig               `mapstructure:"redis"`
	JWT          JWTConfig                 `mapstructure:"jwt"`
	AES          AESConfig                 `mapstructure:"aes"`
	Log          LogConfig                 `mapstructure:"log"`
	AMQP         AMQPConfig                `mapstructure:"amqp"`
	Sync         SyncConfig                `mapstructure:"sync"`
	Availability AvailabilityConfig        `mapstructure:"availability"`
	Providers    map[string]ProviderConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the connection string understood by the golang-migrate pgx/v5 driver.
func (d DatabaseConfig) MigrateURL() string {
	return "pgx5://" + strings.TrimPrefix(d.DSN(), "postgres://")
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded master key
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// AMQPConfig configures the notification fan-out. An empty URL disables it.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// UnverifiedPolicy decides what happens to webhooks whose signature fails.
type UnverifiedPolicy string

const (
	UnverifiedProcess UnverifiedPolicy = "process"
	UnverifiedHold    UnverifiedPolicy = "hold"
)

type SyncConfig struct {
	ProviderTimeout  time.Duration    `mapstructure:"provider_timeout"`
	BackoffBase      time.Duration    `mapstructure:"backoff_base"`
	BackoffCap       time.Duration    `mapstructure:"backoff_cap"`
	MaxAttempts      int              `mapstructure:"max_attempts"`
	SweepInterval    time.Duration    `mapstructure:"sweep_interval"`
	SweepBatch       int              `mapstructure:"sweep_batch"`
	UnverifiedPolicy UnverifiedPolicy `mapstructure:"unverified_policy"`
}

type AvailabilityConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
}

// ProviderConfig holds per-provider endpoints and the webhook shared secret.
type ProviderConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// defaultProviderURLs are the production API roots of the supported providers.
var defaultProviderURLs = map[string]string{
	"tablecheck": "https://api.tablecheck.com/api/partner/v1",
	"opentable":  "https://platform.opentable.com/sync/v2",
	"sevenrooms": "https://api.sevenrooms.com/2_4",
	"chope":      "https://partner-api.chope.co/v1",
	"grab":       "https://partner-api.grab.com/dining/v1",
	"resy":       "https://api.resy.com/4",
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: RSG_ (Reservation Sync Gateway).
// Nested keys use underscore: RSG_DATABASE_HOST, RSG_PROVIDERS_TABLECHECK_WEBHOOK_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "reservation_sync")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "reservation-sync")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "venue.notifications")
	v.SetDefault("sync.provider_timeout", "10s")
	v.SetDefault("sync.backoff_base", "30s")
	v.SetDefault("sync.backoff_cap", "1h")
	v.SetDefault("sync.max_attempts", 8)
	v.SetDefault("sync.sweep_interval", "15s")
	v.SetDefault("sync.sweep_batch", 25)
	v.SetDefault("sync.unverified_policy", string(UnverifiedProcess))
	v.SetDefault("availability.cache_ttl", "60s")
	v.SetDefault("availability.provider_timeout", "4s")
	for name, url := range defaultProviderURLs {
		v.SetDefault("providers."+name+".base_url", url)
		v.SetDefault("providers."+name+".webhook_secret", "")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("RSG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Sync.UnverifiedPolicy {
	case UnverifiedProcess, UnverifiedHold:
	default:
		return fmt.Errorf("sync.unverified_policy must be %q or %q, got %q",
			UnverifiedProcess, UnverifiedHold, c.Sync.UnverifiedPolicy)
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync.max_attempts must be >= 1")
	}
	if c.Sync.BackoffBase <= 0 || c.Sync.BackoffCap < c.Sync.BackoffBase {
		return fmt.Errorf("sync.backoff_cap must be >= sync.backoff_base > 0")
	}
	return nil
}

// WebhookSecrets returns provider name -> webhook shared secret.
func (c *Config) WebhookSecrets() map[string]string {
	out := make(map[string]string, len(c.Providers))
	for name, p := range c.Providers {
		out[name] = p.WebhookSecret
	}
	return out
}
