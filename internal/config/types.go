package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"` // "development" | "production"
	RedisURL       string             `yaml:"redis_url"`
	Redis          RedisRuntimeConfig `yaml:"redis"`
	MongoURI       string             `yaml:"mongo_uri"`
	Mongo          MongoRuntimeConfig `yaml:"mongo"`
	Cache          CacheRuntimeConfig `yaml:"cache"`
	AI             AIConfig           `yaml:"ai"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	Tracing        TracingConfig      `yaml:"tracing"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	JWTSecret      string             `yaml:"jwt_secret"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type MongoRuntimeConfig struct {
	URI        string            `yaml:"uri"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	User       string            `yaml:"user"`
	Password   string            `yaml:"password"`
	AuthSource string            `yaml:"auth_source"`
	Database   string            `yaml:"database"`
	Collection string            `yaml:"collection"`
	Params     map[string]string `yaml:"params"`
}

// CacheRuntimeConfig tunes the summary cache engine.
type CacheRuntimeConfig struct {
	TTLSeconds int    `yaml:"ttl_seconds"`
	KeyPrefix  string `yaml:"key_prefix"`
	Coalesce   bool   `yaml:"coalesce"`
}

// AIConfig selects the model that writes summaries. An empty Provider turns
// generation off and every miss is answered with the fallback text.
type AIConfig struct {
	Provider        string        `yaml:"provider"` // openai | anthropic
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	BaseURL         string        `yaml:"base_url"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	TargetLanguage  string        `yaml:"target_language"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker guarding the AI provider.
type BreakerConfig struct {
	MaxRequests      uint32 `yaml:"max_requests"`
	IntervalSeconds  int    `yaml:"interval_seconds"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

type RateLimitConfig struct {
	Enable        bool `yaml:"enable"`
	Max           int  `yaml:"max"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// TracingConfig controls span export over OTLP/gRPC.
type TracingConfig struct {
	Enable      bool    `yaml:"enable"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawAppConfig struct {
	Port               int                `yaml:"port"`
	Env                string             `yaml:"env"`
	NodeEnv            string             `yaml:"node_env"`
	RedisURL           string             `yaml:"redis_url"`
	Redis              rawRedisConfig     `yaml:"redis"`
	RedisHost          string             `yaml:"redis_host"`
	RedisPort          int                `yaml:"redis_port"`
	RedisPassword      string             `yaml:"redis_password"`
	RedisDB            *int               `yaml:"redis_db"`
	MongoURI           string             `yaml:"mongo_uri"`
	MongoURL           string             `yaml:"mongodb_url"`
	Mongo              rawMongoConfig     `yaml:"mongo"`
	Cache              rawCacheConfig     `yaml:"cache"`
	AI                 rawAIConfig        `yaml:"ai"`
	RateLimit          rawRateLimitConfig `yaml:"rate_limit"`
	Tracing            rawTracingConfig   `yaml:"tracing"`
	Paths              RuntimePathsConfig `yaml:"paths"`
	LogDir             string             `yaml:"log_dir"`
	LogsDir            string             `yaml:"logs_dir"`
	AllowedOrigins     []string           `yaml:"allowed_origins"`
	CORSAllowedOrigins []string           `yaml:"cors_allowed_origins"`
	JWTSecret          string             `yaml:"jwt_secret"`
	JWTSecretLegacy    string             `yaml:"jwtsecret"`
}

type rawRedisConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type rawMongoConfig struct {
	URI        string            `yaml:"uri"`
	URL        string            `yaml:"url"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	User       string            `yaml:"user"`
	Username   string            `yaml:"username"`
	Password   string            `yaml:"password"`
	AuthSource string            `yaml:"auth_source"`
	Database   string            `yaml:"database"`
	DBName     string            `yaml:"db_name"`
	Collection string            `yaml:"collection"`
	Params     map[string]string `yaml:"params"`
}

type rawCacheConfig struct {
	TTLSeconds int    `yaml:"ttl_seconds"`
	TTL        int    `yaml:"ttl"`
	KeyPrefix  string `yaml:"key_prefix"`
	Coalesce   *bool  `yaml:"coalesce"`
}

type rawAIConfig struct {
	Provider        string        `yaml:"provider"`
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	BaseURL         string        `yaml:"base_url"`
	Endpoint        string        `yaml:"endpoint"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	TargetLanguage  string        `yaml:"target_language"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

type rawRateLimitConfig struct {
	Enable        *bool `yaml:"enable"`
	Max           int   `yaml:"max"`
	WindowSeconds int   `yaml:"window_seconds"`
}

type rawTracingConfig struct {
	Enable      *bool    `yaml:"enable"`
	Endpoint    string   `yaml:"endpoint"`
	Insecure    *bool    `yaml:"insecure"`
	ServiceName string   `yaml:"service_name"`
	SampleRatio *float64 `yaml:"sample_ratio"`
}
