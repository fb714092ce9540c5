package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "AFFILIATEHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config aggregates every runtime setting for the platform binaries.
type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	QR            QRConfig
	Import        ImportConfig
}

// Load parses configuration from the environment.
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
	Env          string `envconfig:"AFFILIATEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"AFFILIATEHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AFFILIATEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AFFILIATEHUB_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"AFFILIATEHUB_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AFFILIATEHUB_DB_DSN"`
	Driver string `envconfig:"AFFILIATEHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AFFILIATEHUB_DB_HOST"`
	Port     int    `envconfig:"AFFILIATEHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"AFFILIATEHUB_DB_USER"`
	Password string `envconfig:"AFFILIATEHUB_DB_PASSWORD"`
	Name     string `envconfig:"AFFILIATEHUB_DB_NAME"`
	SSLMode  string `envconfig:"AFFILIATEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AFFILIATEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AFFILIATEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AFFILIATEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AFFILIATEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AFFILIATEHUB_REDIS_URL"`
	Address      string        `envconfig:"AFFILIATEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"AFFILIATEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"AFFILIATEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AFFILIATEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AFFILIATEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AFFILIATEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AFFILIATEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AFFILIATEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AFFILIATEHUB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AFFILIATEHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AFFILIATEHUB_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"AFFILIATEHUB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AFFILIATEHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AFFILIATEHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AFFILIATEHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AFFILIATEHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AFFILIATEHUB_ARGON_KEY_LEN" default:"32"`

	MinLength     int           `envconfig:"AFFILIATEHUB_PASSWORD_MIN_LENGTH" default:"8"`
	ResetTokenTTL time.Duration `envconfig:"AFFILIATEHUB_PASSWORD_RESET_TTL" default:"30m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AFFILIATEHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AFFILIATEHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AFFILIATEHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AFFILIATEHUB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AFFILIATEHUB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AFFILIATEHUB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AFFILIATEHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AFFILIATEHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"AFFILIATEHUB_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	CatalogTopic   string `envconfig:"AFFILIATEHUB_PUBSUB_CATALOG_TOPIC" default:"ah-catalog-events"`
	ClaimTopic     string `envconfig:"AFFILIATEHUB_PUBSUB_CLAIM_TOPIC" default:"ah-claim-events"`
	AffiliateTopic string `envconfig:"AFFILIATEHUB_PUBSUB_AFFILIATE_TOPIC" default:"ah-affiliate-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AFFILIATEHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AFFILIATEHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AFFILIATEHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type QRConfig struct {
	ImageSize int `envconfig:"AFFILIATEHUB_QR_IMAGE_SIZE" default:"256"`
}

type ImportConfig struct {
	MaxRows int `envconfig:"AFFILIATEHUB_IMPORT_MAX_ROWS" default:"500"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for name, value := range map[string]string{
		"AFFILIATEHUB_DB_HOST": db.Host,
		"AFFILIATEHUB_DB_USER": db.User,
		"AFFILIATEHUB_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either AFFILIATEHUB_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
