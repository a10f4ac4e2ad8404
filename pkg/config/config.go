package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	Server       ServerConfig
	DB           DBConfig
	Redis        RedisConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Worker       WorkerConfig
	Cache        CacheConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Eventing     EventingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// DATABASE_URL wins over the structured DSN when both are present.
	if override := strings.TrimSpace(os.Getenv("DATABASE_URL")); override != "" {
		cfg.DB.DSN = override
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEALERSTOCK_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"DEALERSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEALERSTOCK_LOG_WARN_STACK" default:"false"`
	Version      string `envconfig:"DEALERSTOCK_APP_VERSION" default:"dev"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DEALERSTOCK_SERVICE_KIND" default:"api"`
}

type ServerConfig struct {
	Host                   string `envconfig:"DEALERSTOCK_SERVER_HOST" default:"0.0.0.0"`
	Port                   int    `envconfig:"DEALERSTOCK_SERVER_PORT" default:"8080"`
	RequestTimeoutSeconds  int    `envconfig:"DEALERSTOCK_SERVER_REQUEST_TIMEOUT_SECONDS" default:"30"`
	ShutdownTimeoutSeconds int    `envconfig:"DEALERSTOCK_SERVER_SHUTDOWN_TIMEOUT_SECONDS" default:"30"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

type DBConfig struct {
	DSN string `envconfig:"DEALERSTOCK_DB_DSN"`

	MaxOpenConns    int           `envconfig:"DEALERSTOCK_DB_MAX_OPEN_CONNS" default:"10"`
	MinIdleConns    int           `envconfig:"DEALERSTOCK_DB_MIN_IDLE_CONNS" default:"2"`
	AcquireTimeout  time.Duration `envconfig:"DEALERSTOCK_DB_ACQUIRE_TIMEOUT" default:"5s"`
	ConnMaxLifetime time.Duration `envconfig:"DEALERSTOCK_DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALERSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	HealthCheckTimeout        time.Duration `envconfig:"DEALERSTOCK_DB_HEALTH_CHECK_TIMEOUT" default:"3s"`
	HealthCheckAcquireTimeout time.Duration `envconfig:"DEALERSTOCK_DB_HEALTH_CHECK_ACQUIRE_TIMEOUT" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALERSTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEALERSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"DEALERSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALERSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALERSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALERSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALERSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALERSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALERSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CORSConfig struct {
	AllowedOrigins   []string `envconfig:"DEALERSTOCK_CORS_ALLOWED_ORIGINS" default:"*"`
	AllowCredentials bool     `envconfig:"DEALERSTOCK_CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAgeSeconds    int      `envconfig:"DEALERSTOCK_CORS_MAX_AGE_SECONDS" default:"3600"`
}

// AllowsAnyOrigin reports whether the wildcard origin is configured.
func (c CORSConfig) AllowsAnyOrigin() bool {
	for _, origin := range c.AllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

type RateLimitConfig struct {
	Window   time.Duration `envconfig:"DEALERSTOCK_RATE_LIMIT_WINDOW" default:"1s"`
	Requests int           `envconfig:"DEALERSTOCK_RATE_LIMIT_REQUESTS" default:"10"`
}

type WorkerConfig struct {
	Interval time.Duration `envconfig:"DEALERSTOCK_WORKER_INTERVAL" default:"60s"`
	LockTTL  time.Duration `envconfig:"DEALERSTOCK_WORKER_LOCK_TTL" default:"5m"`
}

type CacheConfig struct {
	LowStockThreshold int `envconfig:"DEALERSTOCK_LOW_STOCK_THRESHOLD" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite          bool `envconfig:"DEALERSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate        bool `envconfig:"DEALERSTOCK_AUTO_MIGRATE" default:"false"`
	EnableCaching      bool `envconfig:"DEALERSTOCK_FEATURE_ENABLE_CACHING" default:"false"`
	EnableRateLimiting bool `envconfig:"DEALERSTOCK_FEATURE_ENABLE_RATE_LIMITING" default:"true"`
	EnableMetrics      bool `envconfig:"DEALERSTOCK_FEATURE_ENABLE_METRICS" default:"true"`
	DebugErrors        bool `envconfig:"DEALERSTOCK_DEBUG_ERRORS" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DEALERSTOCK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DEALERSTOCK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DEALERSTOCK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"DEALERSTOCK_PUBSUB_DOMAIN_TOPIC" default:"ds-inventory-events"`
	DomainSubscription string `envconfig:"DEALERSTOCK_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset              string `envconfig:"DEALERSTOCK_BIGQUERY_DATASET" default:"dealerstock"`
	InventoryEventsTable string `envconfig:"DEALERSTOCK_BIGQUERY_INVENTORY_TABLE" default:"inventory_events"`
}

type EventingConfig struct {
	// How long processed event IDs stay in Redis for consumer deduplication.
	OutboxIdempotencyTTL time.Duration `envconfig:"DEALERSTOCK_OUTBOX_IDEMPOTENCY_TTL" default:"24h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DEALERSTOCK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DEALERSTOCK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DEALERSTOCK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// Validate enforces the operational bounds the service relies on.
func (c *Config) Validate() error {
	if !validAppEnv(c.App.Env) {
		return fmt.Errorf("%s must be one of %s", EnvAppEnv, strings.Join(validAppEnvs, ", "))
	}
	if c.Server.Port < 1024 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range 1024..65535", c.Server.Port)
	}
	if c.Server.RequestTimeoutSeconds < 1 || c.Server.RequestTimeoutSeconds > 300 {
		return fmt.Errorf("request timeout %ds out of range 1..300", c.Server.RequestTimeoutSeconds)
	}
	if c.Server.ShutdownTimeoutSeconds < 1 || c.Server.ShutdownTimeoutSeconds > 60 {
		return fmt.Errorf("shutdown timeout %ds out of range 1..60", c.Server.ShutdownTimeoutSeconds)
	}
	if strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("either %s or DATABASE_URL is required", EnvDBDSN)
	}
	if c.DB.MaxOpenConns < 1 || c.DB.MaxOpenConns > 100 {
		return fmt.Errorf("db max connections %d out of range 1..100", c.DB.MaxOpenConns)
	}
	if c.DB.MinIdleConns >= c.DB.MaxOpenConns {
		return fmt.Errorf("db min connections %d must be below max connections %d", c.DB.MinIdleConns, c.DB.MaxOpenConns)
	}
	if c.CORS.MaxAgeSeconds > 86400 {
		return fmt.Errorf("cors max age %ds exceeds 86400", c.CORS.MaxAgeSeconds)
	}
	if c.IsProdLike() && c.CORS.AllowsAnyOrigin() {
		return fmt.Errorf("wildcard CORS origin is not allowed in %s", c.App.Env)
	}
	return nil
}

// IsProdLike reports whether the environment forbids permissive defaults.
func (c *Config) IsProdLike() bool {
	return strings.EqualFold(c.App.Env, AppEnvProd) || strings.EqualFold(c.App.Env, AppEnvStaging)
}

func validAppEnv(env string) bool {
	for _, candidate := range validAppEnvs {
		if strings.EqualFold(env, candidate) {
			return true
		}
	}
	return false
}
