package config

const (
	EnvPrefix = "MANIFEST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "MANIFEST_APP_ENV"
	EnvPort                   = "MANIFEST_APP_PORT"
	EnvLogLevel               = "MANIFEST_LOG_LEVEL"
	EnvTimezone               = "MANIFEST_TIMEZONE"
	EnvDBDSN                  = "MANIFEST_DB_DSN"
	EnvDBHost                 = "MANIFEST_DB_HOST"
	EnvDBUser                 = "MANIFEST_DB_USER"
	EnvDBName                 = "MANIFEST_DB_NAME"
	EnvRedisURL               = "MANIFEST_REDIS_URL"
	EnvJWTSecret              = "MANIFEST_JWT_SECRET"
	EnvJWTIssuer              = "MANIFEST_JWT_ISSUER"
	EnvJWTExpMins             = "MANIFEST_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MANIFEST_REFRESH_TOKEN_TTL_MINUTES"
	EnvCORSAllowedOrigins     = "MANIFEST_CORS_ALLOWED_ORIGINS"
	EnvInvoiceCompanyName     = "MANIFEST_INVOICE_COMPANY_NAME"
	EnvInvoiceAddress         = "MANIFEST_INVOICE_ADDRESS"
)

// legacyDBEnvVars must all be present when no DSN is configured.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
