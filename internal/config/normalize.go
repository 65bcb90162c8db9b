package config

import "strings"

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = withScheme(cfg.URL, "redis", "redis://", "rediss://")
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))
	if cfg.Scheme != "redis" && cfg.Scheme != "rediss" {
		cfg.Scheme = "redis"
		if cfg.TLS {
			cfg.Scheme = "rediss"
		}
	}
	if cfg.URL == "" {
		cfg.Host = orDefault(cfg.Host, defaultRedisHost)
	}
	cfg.Port = orDefaultInt(cfg.Port, defaultRedisPort)
	cfg.Params = copyStringMap(cfg.Params)
	return cfg
}

func normalizeMongoConfig(cfg MongoRuntimeConfig) MongoRuntimeConfig {
	cfg.URI = withScheme(cfg.URI, "mongodb", "mongodb://", "mongodb+srv://")
	if cfg.URI == "" {
		cfg.Host = orDefault(cfg.Host, defaultMongoHost)
	}
	cfg.Port = orDefaultInt(cfg.Port, defaultMongoPort)
	cfg.Database = orDefault(cfg.Database, defaultMongoDatabase)
	cfg.Collection = orDefault(cfg.Collection, defaultMongoCollection)
	cfg.Params = copyStringMap(cfg.Params)
	return cfg
}

func normalizeAIConfig(cfg AIConfig) AIConfig {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}
	cfg.TargetLanguage = orDefault(cfg.TargetLanguage, defaultTargetLanguage)

	b := &cfg.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = defaultBreakerRequests
	}
	if b.IntervalSeconds <= 0 {
		b.IntervalSeconds = defaultBreakerInterval
	}
	if b.TimeoutSeconds <= 0 {
		b.TimeoutSeconds = defaultBreakerTimeout
	}
	if b.FailureThreshold == 0 {
		b.FailureThreshold = defaultBreakerFailures
	}
	return cfg
}

// copyStringMap returns a copy of input without blank keys or values.
func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k, v := strings.TrimSpace(key), strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	return strings.ToLower(orDefault(env, defaultEnv))
}
