package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content over the defaults and validates the result.
func Parse(content []byte) (*AppConfig, error) {
	var raw rawAppConfig
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}

	cfg := defaultAppConfig()
	merge(&cfg, raw)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *AppConfig) error {
	for name, port := range map[string]int{"port": cfg.Port, "redis.port": cfg.Redis.Port, "mongo.port": cfg.Mongo.Port} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s %d, expected 1-65535", name, port)
		}
	}
	if cfg.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	}
	if cfg.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("invalid cache.ttl_seconds %d, expected > 0", cfg.Cache.TTLSeconds)
	}
	if cfg.RateLimit.Max <= 0 || cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("invalid rate_limit %d/%ds, expected positive values", cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds)
	}
	switch cfg.AI.Provider {
	case "":
	case "openai", "anthropic":
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required for provider %q", cfg.AI.Provider)
		}
	default:
		return fmt.Errorf("invalid ai.provider %q, expected openai or anthropic", cfg.AI.Provider)
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return fmt.Errorf("invalid tracing.sample_ratio %g, expected 0-1", cfg.Tracing.SampleRatio)
	}
	if cfg.Tracing.Enable && cfg.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	return nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port:  defaultPort,
		Env:   defaultEnv,
		Redis: RedisRuntimeConfig{Host: defaultRedisHost, Port: defaultRedisPort, DB: defaultRedisDB},
		Mongo: MongoRuntimeConfig{
			Host:       defaultMongoHost,
			Port:       defaultMongoPort,
			Database:   defaultMongoDatabase,
			Collection: defaultMongoCollection,
		},
		Cache: CacheRuntimeConfig{
			TTLSeconds: defaultCacheTTLSeconds,
			KeyPrefix:  defaultCacheKeyPrefix,
			Coalesce:   true,
		},
		AI: AIConfig{MaxOutputTokens: defaultMaxOutputTokens, TargetLanguage: defaultTargetLanguage},
		RateLimit: RateLimitConfig{
			Enable:        true,
			Max:           defaultRateLimitMax,
			WindowSeconds: defaultRateLimitWindow,
		},
		Tracing: TracingConfig{
			Endpoint:    defaultTracingEndpoint,
			Insecure:    true,
			ServiceName: defaultServiceName,
			SampleRatio: 1,
		},
	}
	finalize(&cfg)
	return cfg
}

// merge lays raw over cfg. Where a setting has several spellings, the later
// argument to each set call wins.
func merge(cfg *AppConfig, raw rawAppConfig) {
	setInt(&cfg.Port, raw.Port)
	setString(&cfg.Env, raw.Env, raw.NodeEnv)

	r := &cfg.Redis
	setString(&r.URL, raw.Redis.URL, raw.RedisURL)
	setString(&r.Host, raw.Redis.Host, raw.RedisHost)
	setInt(&r.Port, raw.Redis.Port, raw.RedisPort)
	setString(&r.Username, raw.Redis.Username)
	setString(&r.Password, raw.Redis.Password, raw.RedisPassword)
	setIntPtr(&r.DB, raw.Redis.DB, raw.RedisDB)
	setBool(&r.TLS, raw.Redis.TLS)
	setString(&r.Scheme, raw.Redis.Scheme)
	if raw.Redis.Params != nil {
		r.Params = raw.Redis.Params
	}

	m := &cfg.Mongo
	setString(&m.URI, raw.Mongo.URI, raw.Mongo.URL, raw.MongoURI, raw.MongoURL)
	setString(&m.Host, raw.Mongo.Host)
	setInt(&m.Port, raw.Mongo.Port)
	setString(&m.User, raw.Mongo.User, raw.Mongo.Username)
	setString(&m.Password, raw.Mongo.Password)
	setString(&m.AuthSource, raw.Mongo.AuthSource)
	setString(&m.Database, raw.Mongo.Database, raw.Mongo.DBName)
	setString(&m.Collection, raw.Mongo.Collection)
	if raw.Mongo.Params != nil {
		m.Params = raw.Mongo.Params
	}

	setInt(&cfg.Cache.TTLSeconds, raw.Cache.TTLSeconds, raw.Cache.TTL)
	setString(&cfg.Cache.KeyPrefix, raw.Cache.KeyPrefix)
	setBool(&cfg.Cache.Coalesce, raw.Cache.Coalesce)

	ai := &cfg.AI
	setString(&ai.Provider, raw.AI.Provider)
	setString(&ai.APIKey, raw.AI.APIKey)
	setString(&ai.Model, raw.AI.Model)
	setString(&ai.BaseURL, raw.AI.Endpoint, raw.AI.BaseURL)
	setInt(&ai.MaxOutputTokens, raw.AI.MaxOutputTokens)
	setString(&ai.TargetLanguage, raw.AI.TargetLanguage)
	if b := raw.AI.Breaker; b != (BreakerConfig{}) {
		setUint32(&ai.Breaker.MaxRequests, b.MaxRequests)
		setInt(&ai.Breaker.IntervalSeconds, b.IntervalSeconds)
		setInt(&ai.Breaker.TimeoutSeconds, b.TimeoutSeconds)
		setUint32(&ai.Breaker.FailureThreshold, b.FailureThreshold)
	}

	setBool(&cfg.RateLimit.Enable, raw.RateLimit.Enable)
	setInt(&cfg.RateLimit.Max, raw.RateLimit.Max)
	setInt(&cfg.RateLimit.WindowSeconds, raw.RateLimit.WindowSeconds)

	tr := &cfg.Tracing
	setBool(&tr.Enable, raw.Tracing.Enable)
	setString(&tr.Endpoint, raw.Tracing.Endpoint)
	setBool(&tr.Insecure, raw.Tracing.Insecure)
	setString(&tr.ServiceName, raw.Tracing.ServiceName)
	if raw.Tracing.SampleRatio != nil {
		tr.SampleRatio = *raw.Tracing.SampleRatio
	}

	setString(&cfg.Paths.Logs, raw.Paths.Logs, raw.LogDir, raw.LogsDir)

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}
	setString(&cfg.JWTSecret, raw.JWTSecret, raw.JWTSecretLegacy)

	finalize(cfg)
}

// finalize normalizes every section and derives the connection strings.
func finalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.Mongo = normalizeMongoConfig(cfg.Mongo)
	cfg.AI = normalizeAIConfig(cfg.AI)
	cfg.RedisURL = cfg.Redis.URLValue()
	cfg.MongoURI = cfg.Mongo.URIValue()
}

func setString(dst *string, values ...string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
}

func setInt(dst *int, values ...int) {
	for _, v := range values {
		if v != 0 {
			*dst = v
		}
	}
}

func setIntPtr(dst *int, values ...*int) {
	for _, v := range values {
		if v != nil {
			*dst = *v
		}
	}
}

func setUint32(dst *uint32, v uint32) {
	if v != 0 {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

// LogDir returns the log directory. Relative paths are taken from the
// directory holding the running binary, falling back to the working directory.
func (c *AppConfig) LogDir() string {
	dir := defaultLogDir
	if c != nil && c.Paths.Logs != "" {
		dir = c.Paths.Logs
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}

	base := "."
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		base = filepath.Dir(exe)
	} else if wd, err := os.Getwd(); err == nil {
		base = wd
	}
	return filepath.Join(base, dir)
}

// CacheTTL returns the fast-tier expiry.
func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *AppConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}
