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
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Invoice       InvoiceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MANIFEST_APP_ENV" required:"true"`
	Port         string `envconfig:"MANIFEST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MANIFEST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MANIFEST_LOG_WARN_STACK" default:"false"`
	// Timezone drives manifest numbering prefixes and default delivery dates.
	Timezone        string        `envconfig:"MANIFEST_TIMEZONE" default:"Asia/Kuala_Lumpur"`
	ShutdownTimeout time.Duration `envconfig:"MANIFEST_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the configured business timezone.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

type DBConfig struct {
	DSN    string `envconfig:"MANIFEST_DB_DSN"`
	Driver string `envconfig:"MANIFEST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MANIFEST_DB_HOST"`
	LegacyPort     int    `envconfig:"MANIFEST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MANIFEST_DB_USER"`
	LegacyPassword string `envconfig:"MANIFEST_DB_PASSWORD"`
	LegacyName     string `envconfig:"MANIFEST_DB_NAME"`
	LegacySSLMode  string `envconfig:"MANIFEST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MANIFEST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MANIFEST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MANIFEST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MANIFEST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// Queries slower than this are logged at warn. Zero disables it.
	SlowQuery time.Duration `envconfig:"MANIFEST_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MANIFEST_REDIS_URL"`
	Address      string        `envconfig:"MANIFEST_REDIS_ADDR"`
	Password     string        `envconfig:"MANIFEST_REDIS_PASSWORD"`
	DB           int           `envconfig:"MANIFEST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MANIFEST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MANIFEST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MANIFEST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MANIFEST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MANIFEST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MANIFEST_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MANIFEST_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MANIFEST_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MANIFEST_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MANIFEST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MANIFEST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MANIFEST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MANIFEST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MANIFEST_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MANIFEST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MANIFEST_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MANIFEST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MANIFEST_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MANIFEST_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MANIFEST_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate      bool `envconfig:"MANIFEST_AUTO_MIGRATE" default:"false"`
	OpenRegistration bool `envconfig:"MANIFEST_OPEN_REGISTRATION" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MANIFEST_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// InvoiceConfig holds the letterhead printed on exported documents.
type InvoiceConfig struct {
	CompanyName string   `envconfig:"MANIFEST_INVOICE_COMPANY_NAME" default:"OVERNITE EXPRESS"`
	Address     []string `envconfig:"MANIFEST_INVOICE_ADDRESS"`
	Phone       string   `envconfig:"MANIFEST_INVOICE_PHONE"`
	Fax         string   `envconfig:"MANIFEST_INVOICE_FAX"`
	Terms       string   `envconfig:"MANIFEST_INVOICE_TERMS" default:"C.O.D."`
	Currency    string   `envconfig:"MANIFEST_INVOICE_CURRENCY" default:"RM"`
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
