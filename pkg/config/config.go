package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cron         CronConfig
	Eventing     EventingConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"DEBTTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"DEBTTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DEBTTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEBTTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DEBTTRACK_DB_DSN"`
	Driver string `envconfig:"DEBTTRACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DEBTTRACK_DB_HOST"`
	Port     int    `envconfig:"DEBTTRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"DEBTTRACK_DB_USER"`
	Password string `envconfig:"DEBTTRACK_DB_PASSWORD"`
	Name     string `envconfig:"DEBTTRACK_DB_NAME"`
	SSLMode  string `envconfig:"DEBTTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEBTTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEBTTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEBTTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEBTTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from discrete vars when one was not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" || d.Driver == "sqlite" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either DEBTTRACK_DB_DSN or host/user/name variables are required")
	}
	userInfo := url.User(d.User)
	if d.Password != "" {
		userInfo = url.UserPassword(d.User, d.Password)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"DEBTTRACK_REDIS_URL"`
	Address      string        `envconfig:"DEBTTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"DEBTTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEBTTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEBTTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEBTTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEBTTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEBTTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEBTTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DEBTTRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DEBTTRACK_JWT_ISSUER" default:"debttrack"`
	ExpirationMinutes int    `envconfig:"DEBTTRACK_JWT_EXPIRATION_MINUTES" default:"480"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DEBTTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DEBTTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DEBTTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DEBTTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DEBTTRACK_ARGON_KEY_LEN" default:"32"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DEBTTRACK_CRON_INTERVAL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DEBTTRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DEBTTRACK_AUTO_MIGRATE" default:"false"`
}

// EventingConfig controls how long replayed idempotent responses are retained.
type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"DEBTTRACK_IDEMPOTENCY_TTL" default:"168h"`
}
