package config

const EnvPrefix = "DEVRECS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	ServiceKindAPI             = "api"
	ServiceKindCronWorker      = "cron-worker"
	ServiceKindOutboxPublisher = "outbox-publisher"
)

const (
	RevenueSourceFixed     = "fixed"
	RevenueSourceAdReports = "adreports"
)

const (
	EnvAppEnv   = "DEVRECS_APP_ENV"
	EnvAppPort  = "DEVRECS_APP_PORT"
	EnvLogLevel = "DEVRECS_LOG_LEVEL"

	EnvDBDSN      = "DEVRECS_DB_DSN"
	EnvDBHost     = "DEVRECS_DB_HOST"
	EnvDBPort     = "DEVRECS_DB_PORT"
	EnvDBUser     = "DEVRECS_DB_USER"
	EnvDBPassword = "DEVRECS_DB_PASSWORD"
	EnvDBName     = "DEVRECS_DB_NAME"
	EnvDBSSLMode  = "DEVRECS_DB_SSLMODE"

	EnvRedisURL = "DEVRECS_REDIS_URL"

	EnvJWTSecret  = "DEVRECS_JWT_SECRET"
	EnvJWTIssuer  = "DEVRECS_JWT_ISSUER"
	EnvJWTExpMins = "DEVRECS_JWT_EXPIRATION_MINUTES"

	EnvEarningsRatePerClick    = "DEVRECS_EARNINGS_RATE_PER_CLICK"
	EnvEarningsPlatformFeeRate = "DEVRECS_EARNINGS_PLATFORM_FEE_RATE"
	EnvEarningsMinClicks       = "DEVRECS_EARNINGS_MIN_CLICKS"
	EnvEarningsRevenueSource   = "DEVRECS_EARNINGS_REVENUE_SOURCE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
