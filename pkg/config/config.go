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
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	Aggregate    AggregateConfig
	Cart         CartConfig
	Orders       OrdersConfig
	CORS         CORSConfig
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
	if err := cfg.Orders.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port            string        `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel        string        `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"STOREFRONT_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"STOREFRONT_DB_DSN"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"STOREFRONT_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes      int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"STOREFRONT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// PasswordConfig holds the Argon2id cost settings and the password policy.
type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonIterations  int `envconfig:"STOREFRONT_ARGON_ITERATIONS" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"STOREFRONT_PASSWORD_MIN_LENGTH" default:"8"`
}

// RateLimitConfig sets the fixed windows for login, registration and checkout.
// A zero limit disables that counter.
type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STOREFRONT_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	CheckoutWindow     time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutUserLimit  int           `envconfig:"STOREFRONT_RATE_LIMIT_CHECKOUT_USER_LIMIT" default:"10"`
}

// AggregateConfig tunes the optimistic read-modify-write loop on the user document.
type AggregateConfig struct {
	MaxMutateAttempts int `envconfig:"STOREFRONT_AGGREGATE_MAX_MUTATE_ATTEMPTS" default:"3"`
}

type CartConfig struct {
	MaxLineQuantity int `envconfig:"STOREFRONT_CART_MAX_LINE_QUANTITY" default:"99"`
}

type OrdersConfig struct {
	StrictTransitions     bool   `envconfig:"STOREFRONT_ORDERS_STRICT_TRANSITIONS" default:"false"`
	Currency              string `envconfig:"STOREFRONT_ORDERS_CURRENCY" default:"INR"`
	FlatShippingFee       string `envconfig:"STOREFRONT_ORDERS_FLAT_SHIPPING_FEE" default:"49.00"`
	FreeShippingThreshold string `envconfig:"STOREFRONT_ORDERS_FREE_SHIPPING_THRESHOLD" default:"499.00"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	AllowCredentials bool          `envconfig:"STOREFRONT_CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"STOREFRONT_CORS_MAX_AGE" default:"5m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

func (o OrdersConfig) validate() error {
	if _, err := o.ShippingFee(); err != nil {
		return err
	}
	if _, err := o.FreeShippingAbove(); err != nil {
		return err
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	discrete := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if discrete[env] == "" {
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
