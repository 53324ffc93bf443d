package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Ingest   IngestConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	BigQuery BigQueryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GERAI_APP_ENV" required:"true"`
	Port         string `envconfig:"GERAI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GERAI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GERAI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GERAI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GERAI_DB_DSN"`
	Driver string `envconfig:"GERAI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GERAI_DB_HOST"`
	LegacyPort     int    `envconfig:"GERAI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GERAI_DB_USER"`
	LegacyPassword string `envconfig:"GERAI_DB_PASSWORD"`
	LegacyName     string `envconfig:"GERAI_DB_NAME"`
	LegacySSLMode  string `envconfig:"GERAI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GERAI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GERAI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GERAI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GERAI_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	UseSQLite   bool `envconfig:"GERAI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GERAI_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GERAI_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"GERAI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GERAI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GERAI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GERAI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GERAI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CacheConfig controls dashboard snapshot caching. Bucket is the width of
// the time window folded into cache keys, so parallel replicas converge on
// the same key without coordination.
type CacheConfig struct {
	SnapshotTTL time.Duration `envconfig:"GERAI_CACHE_SNAPSHOT_TTL" default:"5m"`
	Bucket      time.Duration `envconfig:"GERAI_CACHE_BUCKET" default:"5m"`
}

type IngestConfig struct {
	IdempotencyTTL time.Duration `envconfig:"GERAI_INGEST_IDEMPOTENCY_TTL" default:"720h"`
	MaxConcurrency int           `envconfig:"GERAI_INGEST_MAX_CONCURRENCY" default:"8"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GERAI_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"GERAI_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GERAI_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"GERAI_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"GERAI_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset        string `envconfig:"GERAI_BIGQUERY_DATASET" default:"gerai_analytics"`
	SnapshotsTable string `envconfig:"GERAI_BIGQUERY_SNAPSHOTS_TABLE" default:"dashboard_snapshots"`
	Disabled       bool   `envconfig:"GERAI_BIGQUERY_DISABLED" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.UseSQLite {
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
