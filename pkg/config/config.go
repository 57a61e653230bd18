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
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Razorpay     RazorpayConfig
	Wallet       WalletConfig
	Orders       OrdersConfig
	Cron         CronConfig
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
	Env          string `envconfig:"SCRAPLOOP_APP_ENV" required:"true"`
	Port         string `envconfig:"SCRAPLOOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCRAPLOOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCRAPLOOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SCRAPLOOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SCRAPLOOP_DB_DSN"`
	Driver string `envconfig:"SCRAPLOOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCRAPLOOP_DB_HOST"`
	LegacyPort     int    `envconfig:"SCRAPLOOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCRAPLOOP_DB_USER"`
	LegacyPassword string `envconfig:"SCRAPLOOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCRAPLOOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCRAPLOOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCRAPLOOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCRAPLOOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCRAPLOOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCRAPLOOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCRAPLOOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SCRAPLOOP_REDIS_ADDR"`
	Password     string        `envconfig:"SCRAPLOOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCRAPLOOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCRAPLOOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCRAPLOOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCRAPLOOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCRAPLOOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCRAPLOOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SCRAPLOOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SCRAPLOOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SCRAPLOOP_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SCRAPLOOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SCRAPLOOP_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"SCRAPLOOP_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SCRAPLOOP_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SCRAPLOOP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SCRAPLOOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"SCRAPLOOP_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"SCRAPLOOP_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SCRAPLOOP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SCRAPLOOP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SCRAPLOOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RazorpayConfig struct {
	KeyID         string `envconfig:"SCRAPLOOP_RAZORPAY_KEY_ID"`
	KeySecret     string `envconfig:"SCRAPLOOP_RAZORPAY_KEY_SECRET"`
	WebhookSecret string `envconfig:"SCRAPLOOP_RAZORPAY_WEBHOOK_SECRET"`
}

// WalletConfig carries the ledger's money-movement policy. All amounts are
// paise (INR minor units).
type WalletConfig struct {
	CommissionRate              string `envconfig:"SCRAPLOOP_WALLET_COMMISSION_RATE" default:"0.01"`
	CommissionMinimumPaise      int64  `envconfig:"SCRAPLOOP_WALLET_COMMISSION_MINIMUM_PAISE" default:"1"`
	CollectorMinBalancePaise    int64  `envconfig:"SCRAPLOOP_WALLET_COLLECTOR_MIN_BALANCE_PAISE" default:"10000"`
	CollectorFloorPaise         int64  `envconfig:"SCRAPLOOP_WALLET_COLLECTOR_FLOOR_PAISE" default:"-50000"`
	MinWithdrawalPaise          int64  `envconfig:"SCRAPLOOP_WALLET_MIN_WITHDRAWAL_PAISE" default:"10000"`
	ServiceOrderMinBalancePaise int64  `envconfig:"SCRAPLOOP_WALLET_SERVICE_ORDER_MIN_BALANCE_PAISE" default:"5000"`
}

type OrdersConfig struct {
	LargeWeightThresholdKG float64 `envconfig:"SCRAPLOOP_ORDERS_LARGE_WEIGHT_THRESHOLD_KG" default:"100"`
}

type CronConfig struct {
	TickInterval          time.Duration `envconfig:"SCRAPLOOP_CRON_TICK_INTERVAL" default:"1m"`
	OutboxRetention       time.Duration `envconfig:"SCRAPLOOP_CRON_OUTBOX_RETENTION" default:"168h"`
	NotificationRetention time.Duration `envconfig:"SCRAPLOOP_CRON_NOTIFICATION_RETENTION" default:"720h"`
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
