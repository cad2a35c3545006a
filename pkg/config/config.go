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
	Inventory    InventoryConfig
	Loyalty      LoyaltyConfig
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
	Env          string `envconfig:"TILLWORKS_APP_ENV" required:"true"`
	Port         string `envconfig:"TILLWORKS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TILLWORKS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TILLWORKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TILLWORKS_DB_DSN"`
	Driver string `envconfig:"TILLWORKS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TILLWORKS_DB_HOST"`
	Port     int    `envconfig:"TILLWORKS_DB_PORT" default:"5432"`
	User     string `envconfig:"TILLWORKS_DB_USER"`
	Password string `envconfig:"TILLWORKS_DB_PASSWORD"`
	Name     string `envconfig:"TILLWORKS_DB_NAME"`
	SSLMode  string `envconfig:"TILLWORKS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TILLWORKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TILLWORKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TILLWORKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TILLWORKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database DSN or host/user/name must be provided")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TILLWORKS_REDIS_URL"`
	Address      string        `envconfig:"TILLWORKS_REDIS_ADDR"`
	Password     string        `envconfig:"TILLWORKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"TILLWORKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TILLWORKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TILLWORKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TILLWORKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TILLWORKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TILLWORKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TILLWORKS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TILLWORKS_JWT_ISSUER" default:"tillworks"`
	ExpirationMinutes int    `envconfig:"TILLWORKS_JWT_EXPIRATION_MINUTES" default:"720"`
}

// InventoryConfig carries the stock-policy flags consulted by the stock ledger.
type InventoryConfig struct {
	AllowNegativeStock              bool `envconfig:"TILLWORKS_INVENTORY_ALLOW_NEGATIVE_STOCK" default:"false"`
	AllowAdjustWhenTrackingDisabled bool `envconfig:"TILLWORKS_INVENTORY_ALLOW_ADJUST_WHEN_TRACKING_DISABLED" default:"false"`
}

type LoyaltyConfig struct {
	Enabled bool `envconfig:"TILLWORKS_LOYALTY_ENABLED" default:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TILLWORKS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TILLWORKS_AUTO_MIGRATE" default:"false"`
}
