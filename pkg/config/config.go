package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	Earnings     EarningsConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Earnings.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEVRECS_APP_ENV" required:"true"`
	Port         string `envconfig:"DEVRECS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEVRECS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEVRECS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DEVRECS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DEVRECS_DB_DSN"`
	Driver string `envconfig:"DEVRECS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DEVRECS_DB_HOST"`
	LegacyPort     int    `envconfig:"DEVRECS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEVRECS_DB_USER"`
	LegacyPassword string `envconfig:"DEVRECS_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEVRECS_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEVRECS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEVRECS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEVRECS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEVRECS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEVRECS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEVRECS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEVRECS_REDIS_ADDR"`
	Password     string        `envconfig:"DEVRECS_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEVRECS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEVRECS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEVRECS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEVRECS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEVRECS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEVRECS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DEVRECS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DEVRECS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DEVRECS_JWT_EXPIRATION_MINUTES" required:"true"`
}

// RateLimitConfig throttles the public click endpoint per source IP.
type RateLimitConfig struct {
	ClickWindow  time.Duration `envconfig:"DEVRECS_CLICK_RATE_WINDOW" default:"1m"`
	ClickIPLimit int           `envconfig:"DEVRECS_CLICK_RATE_IP_LIMIT" default:"120"`
}

// EarningsConfig carries the attribution policy. The defaults reproduce the
// launch policy: $0.02 estimated revenue per click, 30% platform fee, and a
// 100-click lifetime minimum before a post earns anything.
type EarningsConfig struct {
	RatePerClick    decimal.Decimal `envconfig:"DEVRECS_EARNINGS_RATE_PER_CLICK" default:"0.02"`
	PlatformFeeRate decimal.Decimal `envconfig:"DEVRECS_EARNINGS_PLATFORM_FEE_RATE" default:"0.30"`
	MinClicks       int64           `envconfig:"DEVRECS_EARNINGS_MIN_CLICKS" default:"100"`
	RevenueSource   string          `envconfig:"DEVRECS_EARNINGS_REVENUE_SOURCE" default:"fixed"`
}

func (e EarningsConfig) validate() error {
	if e.RatePerClick.IsNegative() {
		return fmt.Errorf("earnings rate per click must not be negative")
	}
	if e.PlatformFeeRate.IsNegative() || e.PlatformFeeRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("earnings platform fee rate must be between 0 and 1")
	}
	if e.MinClicks < 0 {
		return fmt.Errorf("earnings min clicks must not be negative")
	}
	switch e.RevenueSource {
	case RevenueSourceFixed, RevenueSourceAdReports:
	default:
		return fmt.Errorf("unknown revenue source %q", e.RevenueSource)
	}
	return nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DEVRECS_CRON_INTERVAL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DEVRECS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DEVRECS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DEVRECS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DEVRECS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ClicksTopic        string `envconfig:"DEVRECS_PUBSUB_CLICKS_TOPIC" default:"devrecs-click-events"`
	ClicksSubscription string `envconfig:"DEVRECS_PUBSUB_CLICKS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset       string `envconfig:"DEVRECS_BIGQUERY_DATASET" default:"devrecs"`
	AdEventsTable string `envconfig:"DEVRECS_BIGQUERY_AD_EVENTS_TABLE" default:"ad_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DEVRECS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DEVRECS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DEVRECS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   "/" + db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
