package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "FOODLINK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Payments     PaymentsConfig
	AI           AIConfig
	Storage      StorageConfig
	PubSub       PubSubConfig
	Limits       LimitsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DB.DSN) == "" {
		return fmt.Errorf("%s_DB_DSN is required", EnvPrefix)
	}
	if _, err := c.Payments.FeeRate(); err != nil {
		return err
	}
	if c.Payments.PayoutBusinessDays <= 0 {
		return fmt.Errorf("payout business days must be positive")
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"FOODLINK_APP_ENV" default:"dev"`
	Port         string `envconfig:"FOODLINK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FOODLINK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"FOODLINK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"FOODLINK_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated list of storefront origins.
	CORSOrigins []string `envconfig:"FOODLINK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"FOODLINK_DB_DSN"`
	MaxOpenConns    int           `envconfig:"FOODLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"FOODLINK_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODLINK_REDIS_URL"`
	Address      string        `envconfig:"FOODLINK_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"FOODLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODLINK_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FOODLINK_REDIS_WRITE_TIMEOUT" default:"3s"`
	KeyPrefix    string        `envconfig:"FOODLINK_REDIS_KEY_PREFIX" default:"foodlink"`
}

// JWTConfig verifies access tokens minted by the hosted identity provider.
type JWTConfig struct {
	Secret   string        `envconfig:"FOODLINK_JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"FOODLINK_JWT_ISSUER"`
	Audience string        `envconfig:"FOODLINK_JWT_AUDIENCE" default:"authenticated"`
	Leeway   time.Duration `envconfig:"FOODLINK_JWT_LEEWAY" default:"30s"`
}

type PaymentsConfig struct {
	GatewayURL         string        `envconfig:"FOODLINK_PAYMENTS_GATEWAY_URL" default:"https://api.tosspayments.com/v1/payments/confirm"`
	SecretKey          string        `envconfig:"FOODLINK_PAYMENTS_SECRET_KEY"`
	Timeout            time.Duration `envconfig:"FOODLINK_PAYMENTS_TIMEOUT" default:"10s"`
	PlatformFeeRate    string        `envconfig:"FOODLINK_PAYMENTS_PLATFORM_FEE_RATE" default:"0.035"`
	PayoutBusinessDays int           `envconfig:"FOODLINK_PAYMENTS_PAYOUT_BUSINESS_DAYS" default:"7"`
	// Timezone decides which calendar day a payment is confirmed on.
	Timezone string `envconfig:"FOODLINK_PAYMENTS_TIMEZONE" default:"Asia/Seoul"`
}

// Location loads the timezone used for settlement business-day arithmetic.
func (p PaymentsConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(p.Timezone)
	if name == "" {
		name = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid payments timezone %q: %w", name, err)
	}
	return loc, nil
}

// FeeRate parses the platform fee rate as a fraction in [0, 1).
func (p PaymentsConfig) FeeRate() (decimal.Decimal, error) {
	raw := strings.TrimSpace(p.PlatformFeeRate)
	if raw == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid platform fee rate %q: %w", raw, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("platform fee rate %s out of range", rate)
	}
	return rate, nil
}

type AIConfig struct {
	APIKey   string        `envconfig:"FOODLINK_AI_API_KEY"`
	Model    string        `envconfig:"FOODLINK_AI_MODEL" default:"gemini-2.0-flash"`
	Endpoint string        `envconfig:"FOODLINK_AI_ENDPOINT"`
	Timeout  time.Duration `envconfig:"FOODLINK_AI_TIMEOUT" default:"20s"`
}

type StorageConfig struct {
	// BucketURL is a gocloud blob URL: gs://bucket, file:///path or mem://.
	BucketURL     string `envconfig:"FOODLINK_STORAGE_BUCKET_URL" default:"mem://"`
	PublicBaseURL string `envconfig:"FOODLINK_STORAGE_PUBLIC_BASE_URL" default:"http://localhost:8080/files"`
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"FOODLINK_GCP_PROJECT_ID"`
	DomainTopic string `envconfig:"FOODLINK_PUBSUB_DOMAIN_TOPIC"`
}

// Enabled reports whether domain events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.DomainTopic) != ""
}

type LimitsConfig struct {
	ChatWindow     time.Duration `envconfig:"FOODLINK_CHAT_RATE_WINDOW" default:"1m"`
	ChatPerWindow  int           `envconfig:"FOODLINK_CHAT_RATE_LIMIT" default:"20"`
	IdempotencyTTL time.Duration `envconfig:"FOODLINK_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FOODLINK_AUTO_MIGRATE" default:"false"`
}
