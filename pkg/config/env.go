package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "STREAMFLIX"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STREAMFLIX_APP_ENV"
	EnvPort         = "STREAMFLIX_APP_PORT"
	EnvLogLevel     = "STREAMFLIX_LOG_LEVEL"
	EnvLogFile      = "STREAMFLIX_LOG_FILE"
	EnvDBDSN        = "STREAMFLIX_DB_DSN"
	EnvDBDriver     = "STREAMFLIX_DB_DRIVER"
	EnvDBHost       = "STREAMFLIX_DB_HOST"
	EnvDBUser       = "STREAMFLIX_DB_USER"
	EnvDBName       = "STREAMFLIX_DB_NAME"
	EnvRedisURL     = "STREAMFLIX_REDIS_URL"
	EnvJWTSecret    = "STREAMFLIX_JWT_SECRET"
	EnvJWTIssuer    = "STREAMFLIX_JWT_ISSUER"
	EnvJWTExpMins   = "STREAMFLIX_JWT_EXPIRATION_MINUTES"
	EnvRefreshTTL   = "STREAMFLIX_REFRESH_TOKEN_TTL_MINUTES"
	EnvMailDriver   = "STREAMFLIX_MAIL_DRIVER"
	EnvFrontendURL  = "FRONTEND_URL"
	EnvPlanCacheTTL = "STREAMFLIX_PLAN_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
