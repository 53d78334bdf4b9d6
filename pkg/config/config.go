package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config aggregates every runtime setting the platform binaries consume.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
}

// Load parses the environment into a Config and finalizes derived values.
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
	Env          string `envconfig:"STORELOOM_APP_ENV" required:"true"`
	Port         string `envconfig:"STORELOOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STORELOOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STORELOOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STORELOOM_DB_DSN"`
	Driver string `envconfig:"STORELOOM_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STORELOOM_DB_HOST"`
	Port     int    `envconfig:"STORELOOM_DB_PORT" default:"5432"`
	User     string `envconfig:"STORELOOM_DB_USER"`
	Password string `envconfig:"STORELOOM_DB_PASSWORD"`
	Name     string `envconfig:"STORELOOM_DB_NAME"`
	SSLMode  string `envconfig:"STORELOOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STORELOOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STORELOOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STORELOOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STORELOOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STORELOOM_REDIS_URL"`
	Address      string        `envconfig:"STORELOOM_REDIS_ADDR"`
	Password     string        `envconfig:"STORELOOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"STORELOOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STORELOOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STORELOOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STORELOOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STORELOOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STORELOOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STORELOOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STORELOOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STORELOOM_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STORELOOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STORELOOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STORELOOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STORELOOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STORELOOM_ARGON_KEY_LEN" default:"32"`
}

type StripeConfig struct {
	APIKey string `envconfig:"STORELOOM_STRIPE_API_KEY"`
	Secret string `envconfig:"STORELOOM_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"STORELOOM_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	// InsertRetries bounds how many times a checkout regenerates identifiers
	// after a unique-constraint violation on the final order insert.
	InsertRetries int `envconfig:"STORELOOM_CHECKOUT_INSERT_RETRIES" default:"3"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
