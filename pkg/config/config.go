package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	JWT          JWTConfig
	Invoice      InvoiceConfig
	Catalog      CatalogConfig
	Worker       WorkerConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Invoice.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Catalog.validate(cfg.Mongo); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MKN_APP_ENV" required:"true"`
	Port         string `envconfig:"MKN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MKN_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"MKN_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"MKN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MKN_DB_DSN"`
	Driver string `envconfig:"MKN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MKN_DB_HOST"`
	LegacyPort     int    `envconfig:"MKN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MKN_DB_USER"`
	LegacyPassword string `envconfig:"MKN_DB_PASSWORD"`
	LegacyName     string `envconfig:"MKN_DB_NAME"`
	LegacySSLMode  string `envconfig:"MKN_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"MKN_DB_SQLITE_PATH" default:"file:backoffice.db?_foreign_keys=on"`

	MaxOpenConns    int           `envconfig:"MKN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MKN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MKN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MKN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MKN_REDIS_URL"`
	Address      string        `envconfig:"MKN_REDIS_ADDR"`
	Password     string        `envconfig:"MKN_REDIS_PASSWORD"`
	DB           int           `envconfig:"MKN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MKN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MKN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MKN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MKN_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"MKN_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type MongoConfig struct {
	URI      string        `envconfig:"MKN_MONGO_URI"`
	Database string        `envconfig:"MKN_MONGO_DATABASE" default:"backoffice"`
	Timeout  time.Duration `envconfig:"MKN_MONGO_TIMEOUT" default:"10s"`
}

type JWTConfig struct {
	Secret string `envconfig:"MKN_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"MKN_JWT_ISSUER" default:"mknind-backoffice"`
}

type InvoiceConfig struct {
	Prefix      string `envconfig:"MKN_INVOICE_PREFIX" default:"MKNIND"`
	Counter     string `envconfig:"MKN_INVOICE_COUNTER" default:"redis"`
	MaxAttempts int    `envconfig:"MKN_INVOICE_MAX_ATTEMPTS" default:"5"`
}

func (i *InvoiceConfig) validate() error {
	i.Prefix = strings.TrimSpace(i.Prefix)
	if i.Prefix == "" {
		return fmt.Errorf("%s must not be empty", EnvInvoicePrefix)
	}
	i.Counter = strings.ToLower(strings.TrimSpace(i.Counter))
	switch i.Counter {
	case InvoiceCounterRedis, InvoiceCounterDB, InvoiceCounterLatest:
	default:
		return fmt.Errorf("%s must be one of redis, db, latest (got %q)", EnvInvoiceCounter, i.Counter)
	}
	if i.MaxAttempts <= 0 {
		i.MaxAttempts = 1
	}
	return nil
}

type CatalogConfig struct {
	Store string `envconfig:"MKN_CATALOG_STORE" default:"postgres"`
}

func (c *CatalogConfig) validate(mongo MongoConfig) error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case CatalogStorePostgres:
		return nil
	case CatalogStoreMongo:
		if mongo.URI == "" {
			return fmt.Errorf("%s is required when %s=mongo", EnvMongoURI, EnvCatalogStore)
		}
		return nil
	}
	return fmt.Errorf("%s must be postgres or mongo (got %q)", EnvCatalogStore, c.Store)
}

// WorkerConfig drives the maintenance worker.
type WorkerConfig struct {
	AuditInterval time.Duration `envconfig:"MKN_AUDIT_INTERVAL" default:"24h"`
	LockTTL       time.Duration `envconfig:"MKN_WORKER_LOCK_TTL" default:"1h"`
	MetricsPort   string        `envconfig:"MKN_WORKER_METRICS_PORT" default:"9090"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MKN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MKN_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	missing := []string{}
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
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}
	db.DSN = u.String()
	return nil
}
