package config

import (
	"fmt"
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
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Audit         AuditConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LICIMAR_APP_ENV" default:"dev"`
	Port         string `envconfig:"LICIMAR_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LICIMAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LICIMAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

type DBConfig struct {
	Driver string `envconfig:"LICIMAR_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"LICIMAR_DB_DSN" default:"licimar.db"`

	MaxOpenConns    int           `envconfig:"LICIMAR_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"LICIMAR_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"LICIMAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LICIMAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d DBConfig) validate() error {
	switch d.Driver {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", d.Driver)
	}
	if d.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"LICIMAR_REDIS_URL"`
	Address      string        `envconfig:"LICIMAR_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"LICIMAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"LICIMAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LICIMAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LICIMAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LICIMAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LICIMAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LICIMAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LICIMAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LICIMAR_JWT_ISSUER" default:"licimar"`
	ExpirationMinutes      int    `envconfig:"LICIMAR_JWT_EXPIRATION_MINUTES" default:"1440"`
	RefreshTokenTTLMinutes int    `envconfig:"LICIMAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LICIMAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LICIMAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LICIMAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LICIMAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LICIMAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LICIMAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginAccountLimit  int           `envconfig:"LICIMAR_AUTH_RATE_LIMIT_LOGIN_ACCOUNT_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LICIMAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type AuditConfig struct {
	RetentionDays int `envconfig:"LICIMAR_AUDIT_RETENTION_DAYS" default:"90"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LICIMAR_AUTO_MIGRATE" default:"true"`
}
