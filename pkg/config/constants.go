package config

const (
	EnvPrefix = "MKN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "MKN_APP_ENV"
	EnvPort      = "MKN_APP_PORT"
	EnvLogLevel  = "MKN_LOG_LEVEL"
	EnvLogFormat = "MKN_LOG_FORMAT"

	EnvDBDSN  = "MKN_DB_DSN"
	EnvDBHost = "MKN_DB_HOST"
	EnvDBUser = "MKN_DB_USER"
	EnvDBName = "MKN_DB_NAME"

	EnvRedisURL = "MKN_REDIS_URL"
	EnvMongoURI = "MKN_MONGO_URI"

	EnvJWTSecret = "MKN_JWT_SECRET"
	EnvJWTIssuer = "MKN_JWT_ISSUER"

	EnvInvoicePrefix  = "MKN_INVOICE_PREFIX"
	EnvInvoiceCounter = "MKN_INVOICE_COUNTER"
	EnvCatalogStore   = "MKN_CATALOG_STORE"

	InvoiceCounterRedis  = "redis"
	InvoiceCounterDB     = "db"
	InvoiceCounterLatest = "latest"

	CatalogStorePostgres = "postgres"
	CatalogStoreMongo    = "mongo"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
