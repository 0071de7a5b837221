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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Invite       InviteConfig
	FeatureFlags FeatureFlagsConfig
	Settlement   SettlementConfig
	Eventing     EventingConfig
	RateLimit    RateLimitConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRIPMATE_APP_ENV" required:"true"`
	Port         string `envconfig:"TRIPMATE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRIPMATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRIPMATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRIPMATE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRIPMATE_DB_DSN"`
	Driver string `envconfig:"TRIPMATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRIPMATE_DB_HOST"`
	LegacyPort     int    `envconfig:"TRIPMATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRIPMATE_DB_USER"`
	LegacyPassword string `envconfig:"TRIPMATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRIPMATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRIPMATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRIPMATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRIPMATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRIPMATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRIPMATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRIPMATE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRIPMATE_REDIS_ADDR"`
	Password     string        `envconfig:"TRIPMATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRIPMATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRIPMATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRIPMATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRIPMATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRIPMATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRIPMATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TRIPMATE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TRIPMATE_JWT_ISSUER" default:"tripmate"`
	ExpirationMinutes int    `envconfig:"TRIPMATE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type InviteConfig struct {
	CodeLength       int    `envconfig:"TRIPMATE_INVITE_CODE_LENGTH" default:"8"`
	ArgonMemoryKB    uint32 `envconfig:"TRIPMATE_INVITE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        uint32 `envconfig:"TRIPMATE_INVITE_ARGON_TIME" default:"3"`
	ArgonParallelism uint8  `envconfig:"TRIPMATE_INVITE_ARGON_PARALLELISM" default:"2"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRIPMATE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRIPMATE_AUTO_MIGRATE" default:"false"`
}

type SettlementConfig struct {
	RecomputeLockTTL time.Duration `envconfig:"TRIPMATE_SETTLEMENT_RECOMPUTE_LOCK_TTL" default:"30s"`
}

// RateLimitConfig throttles invite-code redemption, the only surface that
// accepts a guessable secret.
type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"TRIPMATE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type RateLimitConfig struct {
	AcceptWindow    time.Duration `envconfig:"TRIPMATE_ACCEPT_RATE_LIMIT_WINDOW" default:"10m"`
	AcceptIPLimit   int           `envconfig:"TRIPMATE_ACCEPT_RATE_LIMIT_IP" default:"30"`
	AcceptCodeLimit int           `envconfig:"TRIPMATE_ACCEPT_RATE_LIMIT_CODE" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TRIPMATE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TRIPMATE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TRIPMATE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	TripEventsTopic        string `envconfig:"TRIPMATE_PUBSUB_TRIP_EVENTS_TOPIC" default:"tm-trip-events"`
	TripEventsSubscription string `envconfig:"TRIPMATE_PUBSUB_TRIP_EVENTS_SUBSCRIPTION" default:"tm-trip-events-worker"`
	NotificationTopic      string `envconfig:"TRIPMATE_PUBSUB_NOTIFICATION_TOPIC" default:"tm-notification-events"`
	AnalyticsTopic         string `envconfig:"TRIPMATE_PUBSUB_ANALYTICS_TOPIC" default:"tm-analytics-events"`
	AnalyticsSubscription  string `envconfig:"TRIPMATE_PUBSUB_ANALYTICS_SUBSCRIPTION" default:"tm-analytics-worker"`
}

type BigQueryConfig struct {
	Dataset            string `envconfig:"TRIPMATE_BIGQUERY_DATASET" default:"tripmate"`
	ExpenseEventsTable string `envconfig:"TRIPMATE_BIGQUERY_EXPENSE_TABLE" default:"expense_events"`
	TripActivityTable  string `envconfig:"TRIPMATE_BIGQUERY_TRIP_ACTIVITY_TABLE" default:"trip_activity"`
	TripEventsTable    string `envconfig:"TRIPMATE_BIGQUERY_TRIP_EVENTS_TABLE" default:"trip_events"`
}

type OutboxConfig struct {
	BatchSize     int           `envconfig:"TRIPMATE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollInterval  time.Duration `envconfig:"TRIPMATE_OUTBOX_PUBLISH_POLL_INTERVAL" default:"500ms"`
	MaxAttempts   int           `envconfig:"TRIPMATE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays int           `envconfig:"TRIPMATE_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"TRIPMATE_CRON_INTERVAL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == DriverSQLite {
		db.DSN = "file:tripmate.db?cache=shared"
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
