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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Mail          MailConfig
	Frontend      FrontendConfig
	Catalog       CatalogConfig
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
	Env              string        `envconfig:"STREAMFLIX_APP_ENV" required:"true"`
	Port             string        `envconfig:"STREAMFLIX_APP_PORT" default:"8080"`
	LogLevel         string        `envconfig:"STREAMFLIX_LOG_LEVEL" default:"info"`
	LogWarnStack     bool          `envconfig:"STREAMFLIX_LOG_WARN_STACK" default:"false"`
	LogFile          string        `envconfig:"STREAMFLIX_LOG_FILE"`
	LogMaxSizeMB     int           `envconfig:"STREAMFLIX_LOG_MAX_SIZE_MB" default:"100"`
	LogMaxBackups    int           `envconfig:"STREAMFLIX_LOG_MAX_BACKUPS" default:"5"`
	LogMaxAgeDays    int           `envconfig:"STREAMFLIX_LOG_MAX_AGE_DAYS" default:"28"`
	ShutdownTimeout  time.Duration `envconfig:"STREAMFLIX_SHUTDOWN_TIMEOUT" default:"15s"`
	CORSAllowOrigins []string      `envconfig:"STREAMFLIX_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STREAMFLIX_DB_DSN"`
	Driver string `envconfig:"STREAMFLIX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STREAMFLIX_DB_HOST"`
	LegacyPort     int    `envconfig:"STREAMFLIX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STREAMFLIX_DB_USER"`
	LegacyPassword string `envconfig:"STREAMFLIX_DB_PASSWORD"`
	LegacyName     string `envconfig:"STREAMFLIX_DB_NAME"`
	LegacySSLMode  string `envconfig:"STREAMFLIX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STREAMFLIX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STREAMFLIX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STREAMFLIX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STREAMFLIX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"STREAMFLIX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STREAMFLIX_REDIS_ADDR"`
	Password     string        `envconfig:"STREAMFLIX_REDIS_PASSWORD"`
	DB           int           `envconfig:"STREAMFLIX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STREAMFLIX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STREAMFLIX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STREAMFLIX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STREAMFLIX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STREAMFLIX_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"STREAMFLIX_REDIS_KEY_PREFIX" default:"streamflix"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STREAMFLIX_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STREAMFLIX_JWT_ISSUER" default:"streamflix"`
	ExpirationMinutes      int    `envconfig:"STREAMFLIX_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"STREAMFLIX_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STREAMFLIX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STREAMFLIX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STREAMFLIX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STREAMFLIX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STREAMFLIX_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STREAMFLIX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STREAMFLIX_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STREAMFLIX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STREAMFLIX_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STREAMFLIX_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STREAMFLIX_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig drives the in-process token bucket applied to the API group.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"STREAMFLIX_RATE_LIMIT_RPS" default:"50"`
	Burst             int     `envconfig:"STREAMFLIX_RATE_LIMIT_BURST" default:"100"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STREAMFLIX_AUTO_MIGRATE" default:"false"`
}

// MailConfig selects the outbound mail transport. The log driver never dials out.
type MailConfig struct {
	Driver             string        `envconfig:"STREAMFLIX_MAIL_DRIVER" default:"log"`
	From               string        `envconfig:"STREAMFLIX_MAIL_FROM" default:"StreamFlix <noreply@streamflix.local>"`
	SMTPHost           string        `envconfig:"STREAMFLIX_SMTP_HOST"`
	SMTPPort           int           `envconfig:"STREAMFLIX_SMTP_PORT" default:"587"`
	SMTPUser           string        `envconfig:"STREAMFLIX_SMTP_USER"`
	SMTPPassword       string        `envconfig:"STREAMFLIX_SMTP_PASSWORD"`
	BreakerMaxFailures uint32        `envconfig:"STREAMFLIX_MAIL_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"STREAMFLIX_MAIL_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

// IsSMTP reports whether mail should go through the SMTP transport.
func (m MailConfig) IsSMTP() bool {
	return strings.EqualFold(strings.TrimSpace(m.Driver), "smtp")
}

type FrontendConfig struct {
	URL string `envconfig:"FRONTEND_URL" default:"http://localhost:8080"`
}

type CatalogConfig struct {
	PlanCacheTTL time.Duration `envconfig:"STREAMFLIX_PLAN_CACHE_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:streamflix.db?_foreign_keys=on"
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
