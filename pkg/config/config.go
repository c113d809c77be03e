package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Reports       ReportsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
	Version       VersionConfig
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
	Env          string `envconfig:"PRICEWISE_APP_ENV" required:"true"`
	Port         string `envconfig:"PRICEWISE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRICEWISE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRICEWISE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PRICEWISE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PRICEWISE_DB_DSN"`
	Driver string `envconfig:"PRICEWISE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRICEWISE_DB_HOST"`
	LegacyPort     int    `envconfig:"PRICEWISE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRICEWISE_DB_USER"`
	LegacyPassword string `envconfig:"PRICEWISE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRICEWISE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRICEWISE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRICEWISE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRICEWISE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRICEWISE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRICEWISE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRICEWISE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRICEWISE_REDIS_ADDR"`
	Password     string        `envconfig:"PRICEWISE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRICEWISE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRICEWISE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRICEWISE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRICEWISE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRICEWISE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRICEWISE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PRICEWISE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PRICEWISE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PRICEWISE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PRICEWISE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PRICEWISE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PRICEWISE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PRICEWISE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PRICEWISE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PRICEWISE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PRICEWISE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PRICEWISE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PRICEWISE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate      bool `envconfig:"PRICEWISE_AUTO_MIGRATE" default:"false"`
	AnalyticsEnabled bool `envconfig:"PRICEWISE_ANALYTICS_ENABLED" default:"true"`
}

type ReportsConfig struct {
	PreviewTTL       time.Duration `envconfig:"PRICEWISE_REPORT_PREVIEW_TTL" default:"720h"`
	MaxSections      int           `envconfig:"PRICEWISE_REPORT_MAX_SECTIONS" default:"40"`
	CompanyName      string        `envconfig:"PRICEWISE_REPORT_COMPANY_NAME" default:"PriceWise"`
	ContactEmail     string        `envconfig:"PRICEWISE_REPORT_CONTACT_EMAIL" default:"sales@pricewise.example"`
	FallbackCacheTTL time.Duration `envconfig:"PRICEWISE_REPORT_FALLBACK_CACHE_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PRICEWISE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PRICEWISE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PRICEWISE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"PRICEWISE_GCS_BUCKET_NAME"`
	PreviewPrefix string `envconfig:"PRICEWISE_GCS_PREVIEW_PREFIX" default:"previews"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"PRICEWISE_PUBSUB_DOMAIN_TOPIC" default:"pw-domain-events"`
	DomainSubscription string `envconfig:"PRICEWISE_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset     string `envconfig:"PRICEWISE_BIGQUERY_DATASET" default:"pricewise"`
	EventsTable string `envconfig:"PRICEWISE_BIGQUERY_EVENTS_TABLE" default:"simulator_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PRICEWISE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PRICEWISE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PRICEWISE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type VersionConfig struct {
	Platform string `envconfig:"PRICEWISE_PLATFORM_VERSION"`
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
