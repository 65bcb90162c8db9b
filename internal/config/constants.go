package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath      = "config.yml"
	defaultPort            = 2333
	defaultEnv             = "development"
	defaultRedisHost       = "localhost"
	defaultRedisPort       = 6379
	defaultRedisDB         = 0
	defaultMongoHost       = "127.0.0.1"
	defaultMongoPort       = 27017
	defaultMongoDatabase   = "summarizer"
	defaultMongoCollection = "summary_cache"
	defaultCacheTTLSeconds = 86400
	defaultCacheKeyPrefix  = "summary:"
	defaultMaxOutputTokens = 300
	defaultTargetLanguage  = "en"
	defaultRateLimitMax    = 50
	defaultRateLimitWindow = 1
	defaultBreakerRequests = 1
	defaultBreakerInterval = 60
	defaultBreakerTimeout  = 30
	defaultBreakerFailures = 5
	defaultLogDir          = "logs"
	defaultTracingEndpoint = "localhost:4317"
	defaultServiceName     = "summarizer"
)
