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
	FeatureFlags FeatureFlagsConfig
	Gateway      GatewayConfig
	Badges       BadgesConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Push         PushConfig
	Metrics      MetricsConfig
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
	Env          string `envconfig:"TIENDA_APP_ENV" required:"true"`
	Port         string `envconfig:"TIENDA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIENDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIENDA_LOG_WARN_STACK" default:"false"`
	// PublicBaseURL is where the gateway sends the buyer back (GET /verificar-pago).
	PublicBaseURL  string   `envconfig:"TIENDA_PUBLIC_BASE_URL" default:"http://localhost:3000"`
	FrontendURL    string   `envconfig:"TIENDA_FRONTEND_URL" default:"http://localhost:5173"`
	AllowedOrigins []string `envconfig:"TIENDA_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"TIENDA_DB_DSN"`

	LegacyHost     string `envconfig:"TIENDA_DB_HOST"`
	LegacyPort     int    `envconfig:"TIENDA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TIENDA_DB_USER"`
	LegacyPassword string `envconfig:"TIENDA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TIENDA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TIENDA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIENDA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIENDA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDA_REDIS_URL"`
	Address      string        `envconfig:"TIENDA_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIENDA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIENDA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDA_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"TIENDA_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"TIENDA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TIENDA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TIENDA_JWT_EXPIRATION_MINUTES" default:"60"`
	CookieName        string `envconfig:"TIENDA_JWT_COOKIE_NAME" default:"authToken"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TIENDA_AUTO_MIGRATE" default:"false"`
}

type GatewayConfig struct {
	Name        string        `envconfig:"TIENDA_GATEWAY_NAME" default:"MercadoPago"`
	AccessToken string        `envconfig:"TIENDA_MERCADOPAGO_ACCESS_TOKEN"`
	Currency    string        `envconfig:"TIENDA_GATEWAY_CURRENCY" default:"MXN"`
	Timeout     time.Duration `envconfig:"TIENDA_GATEWAY_TIMEOUT" default:"10s"`
	GuardTTL    time.Duration `envconfig:"TIENDA_GATEWAY_CALLBACK_GUARD_TTL" default:"24h"`
	SuccessPage string        `envconfig:"TIENDA_GATEWAY_SUCCESS_PAGE" default:"/pago-exitoso"`
	PendingPage string        `envconfig:"TIENDA_GATEWAY_PENDING_PAGE" default:"/pago-pendiente"`
	FailurePage string        `envconfig:"TIENDA_GATEWAY_FAILURE_PAGE" default:"/pago-fallido"`
}

type BadgesConfig struct {
	FeaturedCategoryID uint64 `envconfig:"TIENDA_BADGES_FEATURED_CATEGORY_ID" default:"1"`
	BulkCategoryID     uint64 `envconfig:"TIENDA_BADGES_BULK_CATEGORY_ID" default:"2"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TIENDA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"TIENDA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TIENDA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"TIENDA_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"TIENDA_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	MaxPhotoMB    int    `envconfig:"TIENDA_GCS_MAX_PHOTO_MB" default:"10"`
}

type PushConfig struct {
	Enabled bool `envconfig:"TIENDA_PUSH_ENABLED" default:"false"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"TIENDA_METRICS_ENABLED" default:"true"`
	Path    string `envconfig:"TIENDA_METRICS_PATH" default:"/metrics"`
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
