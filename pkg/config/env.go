package config

const (
	EnvPrefix = "TIENDA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "TIENDA_APP_ENV"
	EnvPort      = "TIENDA_APP_PORT"
	EnvDBDSN     = "TIENDA_DB_DSN"
	EnvDBHost    = "TIENDA_DB_HOST"
	EnvDBUser    = "TIENDA_DB_USER"
	EnvDBName    = "TIENDA_DB_NAME"
	EnvRedisURL  = "TIENDA_REDIS_URL"
	EnvJWTSecret = "TIENDA_JWT_SECRET"
	EnvJWTIssuer = "TIENDA_JWT_ISSUER"

	EnvGatewayTimeout     = "TIENDA_GATEWAY_TIMEOUT"
	EnvFeaturedCategoryID = "TIENDA_BADGES_FEATURED_CATEGORY_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
