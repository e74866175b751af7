package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOREFRONT_APP_ENV"
	EnvPort     = "STOREFRONT_APP_PORT"
	EnvDBDSN    = "STOREFRONT_DB_DSN"
	EnvDBHost   = "STOREFRONT_DB_HOST"
	EnvDBUser   = "STOREFRONT_DB_USER"
	EnvDBName   = "STOREFRONT_DB_NAME"
	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvJWTSecret = "STOREFRONT_JWT_SECRET"

	EnvOrdersStrictTransitions = "STOREFRONT_ORDERS_STRICT_TRANSITIONS"
	EnvOrdersFlatShippingFee   = "STOREFRONT_ORDERS_FLAT_SHIPPING_FEE"
	EnvOrdersFreeShipping      = "STOREFRONT_ORDERS_FREE_SHIPPING_THRESHOLD"
	EnvCORSAllowedOrigins      = "STOREFRONT_CORS_ALLOWED_ORIGINS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
