package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Preferences.Backend {
	case BackendPostgres:
	case BackendRedis:
		if strings.TrimSpace(c.Redis.URL) == "" {
			return fmt.Errorf("redis.url is required when preferences.backend is %q", BackendRedis)
		}
	default:
		return fmt.Errorf("preferences.backend must be %q or %q (got %q)", BackendPostgres, BackendRedis, c.Preferences.Backend)
	}

	if err := c.Dictionary.validate(); err != nil {
		return fmt.Errorf("dictionary: %w", err)
	}

	if c.RateLimit.LookupsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.lookups_per_minute must be > 0 (got %d)", c.RateLimit.LookupsPerMinute)
	}

	if c.Sync.Enabled {
		ch := strings.TrimSpace(c.Sync.Channel)
		if ch == "" {
			return fmt.Errorf("sync.channel is required when sync is enabled")
		}
		// PostgreSQL truncates identifiers at 63 bytes.
		if len(ch) > 63 {
			return fmt.Errorf("sync.channel must be at most 63 bytes (got %d)", len(ch))
		}
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (d *DictionaryConfig) validate() error {
	if d.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0 (got %v)", d.RequestTimeout)
	}
	if d.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be > 0 (got %d)", d.RetentionDays)
	}
	if d.HotCacheTTL < 0 {
		return fmt.Errorf("hot_cache_ttl must be >= 0 (got %v)", d.HotCacheTTL)
	}
	if strings.TrimSpace(d.FallbackWord) == "" {
		return fmt.Errorf("fallback_word must not be blank")
	}
	for name, raw := range map[string]string{
		"freedict_base_url": d.FreeDictBaseURL,
		"ninja_base_url":    d.NinjaBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL (got %q)", name, raw)
		}
	}
	return nil
}
