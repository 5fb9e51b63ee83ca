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
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Logistics     LogisticsConfig
	ImageStore    ImageStoreConfig
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
	Env          string   `envconfig:"STRIDEWEAR_APP_ENV" required:"true"`
	Port         string   `envconfig:"STRIDEWEAR_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"STRIDEWEAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"STRIDEWEAR_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"STRIDEWEAR_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STRIDEWEAR_DB_DSN"`
	Driver string `envconfig:"STRIDEWEAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STRIDEWEAR_DB_HOST"`
	LegacyPort     int    `envconfig:"STRIDEWEAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STRIDEWEAR_DB_USER"`
	LegacyPassword string `envconfig:"STRIDEWEAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"STRIDEWEAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"STRIDEWEAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STRIDEWEAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STRIDEWEAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STRIDEWEAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STRIDEWEAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STRIDEWEAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STRIDEWEAR_REDIS_ADDR"`
	Password     string        `envconfig:"STRIDEWEAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"STRIDEWEAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STRIDEWEAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STRIDEWEAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STRIDEWEAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STRIDEWEAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STRIDEWEAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STRIDEWEAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STRIDEWEAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STRIDEWEAR_JWT_EXPIRATION_MINUTES" required:"true"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STRIDEWEAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"STRIDEWEAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"STRIDEWEAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STRIDEWEAR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STRIDEWEAR_AUTO_MIGRATE" default:"false"`
}

// LogisticsConfig holds the GHN-style carrier API settings.
type LogisticsConfig struct {
	RegionAPI      string        `envconfig:"STRIDEWEAR_GHN_REGION_API" required:"true"`
	ServiceAPI     string        `envconfig:"STRIDEWEAR_GHN_SERVICE_API" required:"true"`
	Token          string        `envconfig:"STRIDEWEAR_GHN_TOKEN" required:"true"`
	ShopID         int           `envconfig:"STRIDEWEAR_GHN_SHOP_ID" required:"true"`
	ShopDistrictID int           `envconfig:"STRIDEWEAR_GHN_SHOP_DISTRICT_ID" required:"true"`
	RequestTimeout time.Duration `envconfig:"STRIDEWEAR_GHN_REQUEST_TIMEOUT" default:"10s"`
	FallbackFee    int           `envconfig:"STRIDEWEAR_GHN_FALLBACK_FEE" default:"30000"`
	RegionCacheTTL time.Duration `envconfig:"STRIDEWEAR_GHN_REGION_CACHE_TTL" default:"12h"`
}

type ImageStoreConfig struct {
	BaseURL       string `envconfig:"STRIDEWEAR_IMAGE_STORE_URL" required:"true"`
	APIKey        string `envconfig:"STRIDEWEAR_IMAGE_STORE_API_KEY"`
	ProductFolder string `envconfig:"STRIDEWEAR_IMAGE_STORE_PRODUCT_FOLDER" default:"stridewear/product"`
	ProofFolder   string `envconfig:"STRIDEWEAR_IMAGE_STORE_PROOF_FOLDER" default:"stridewear/deliveryProof"`
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
