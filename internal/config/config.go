package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Redis       RedisConfig       `yaml:"redis"`
	Dictionary  DictionaryConfig  `yaml:"dictionary"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Sync        SyncConfig        `yaml:"sync"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MigrateOnStart  bool          `yaml:"migrate_on_start" env:"SERVER_MIGRATE_ON_START" env-default:"true"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ApplicationName string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"owl-backend"`
}

// Preference store backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// PreferencesConfig selects where history and favourites are persisted.
type PreferencesConfig struct {
	Backend string `yaml:"backend" env:"PREFERENCES_BACKEND" env-default:"postgres"`
}

// RedisConfig holds Redis connection settings for the redis preference backend.
type RedisConfig struct {
	URL       string `yaml:"url"        env:"REDIS_URL"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"owl:prefs:"`
}

// DictionaryConfig holds remote dictionary and word cache settings.
type DictionaryConfig struct {
	FreeDictBaseURL string        `yaml:"freedict_base_url" env:"DICT_FREEDICT_BASE_URL" env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	RequestTimeout  time.Duration `yaml:"request_timeout"   env:"DICT_REQUEST_TIMEOUT"   env-default:"10s"`
	NinjaBaseURL    string        `yaml:"ninja_base_url"    env:"DICT_NINJA_BASE_URL"    env-default:"https://api.api-ninjas.com/v1"`
	NinjaAPIKey     string        `yaml:"ninja_api_key"     env:"DICT_NINJA_API_KEY"`
	FallbackWord    string        `yaml:"fallback_word"     env:"DICT_FALLBACK_WORD"     env-default:"free"`
	HotCacheTTL     time.Duration `yaml:"hot_cache_ttl"     env:"DICT_HOT_CACHE_TTL"     env-default:"10m"`
	RetentionDays   int           `yaml:"retention_days"    env:"DICT_RETENTION_DAYS"    env-default:"90"`
	RecordHistory   bool          `yaml:"record_history"    env:"DICT_RECORD_HISTORY"    env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig bounds how often a client may hit the word lookup endpoints.
type RateLimitConfig struct {
	LookupsPerMinute int           `yaml:"lookups_per_minute" env:"RATE_LIMIT_LOOKUPS_PER_MINUTE" env-default:"60"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval"   env:"RATE_LIMIT_CLEANUP_INTERVAL"   env-default:"5m"`
}

// SyncConfig controls how processes sharing the database (server, owlctl,
// cleanup) announce changes to each other. The channel is a PostgreSQL
// LISTEN/NOTIFY channel, or a Redis pub/sub channel when preferences live in
// Redis.
type SyncConfig struct {
	Enabled          bool          `yaml:"enabled"            env:"SYNC_ENABLED"            env-default:"true"`
	Channel          string        `yaml:"channel"            env:"SYNC_CHANNEL"            env-default:"owl_changes"`
	PublishTimeout   time.Duration `yaml:"publish_timeout"    env:"SYNC_PUBLISH_TIMEOUT"    env-default:"5s"`
	RetryInterval    time.Duration `yaml:"retry_interval"     env:"SYNC_RETRY_INTERVAL"     env-default:"1s"`
	MaxRetryInterval time.Duration `yaml:"max_retry_interval" env:"SYNC_MAX_RETRY_INTERVAL" env-default:"30s"`
}

// Retention returns the cache retention window used by the cleanup job.
func (c DictionaryConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// RemoteRandomEnabled reports whether a Ninja API key is configured.
func (c DictionaryConfig) RemoteRandomEnabled() bool {
	return strings.TrimSpace(c.NinjaAPIKey) != ""
}
