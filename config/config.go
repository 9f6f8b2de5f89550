package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is set to send mail.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.From != ""
}

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	StorageDriver  string
	FirebaseBucket string

	JWTSecret      string
	SessionTTL     time.Duration
	SessionIdleTTL time.Duration
	ToastTTL       time.Duration

	CatalogPath    string
	AllowedOrigins []string

	SMTP      SMTP
	ShopEmail string
}

func (c Config) Production() bool {
	return c.Env == "production"
}

func LoadEnv() error {
	// A missing .env is fine: in production the variables are set directly.
	_ = godotenv.Load()
	return nil
}

// ValidateEnv checks that critical environment variables are set and warns
// about optional ones that disable features when missing.
func ValidateEnv(log *zap.Logger) error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if GetEnv("DB_DRIVER", "postgres") == "postgres" && os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if os.Getenv("STORAGE_DRIVER") == "firebase" && os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		missing = append(missing, "FIREBASE_STORAGE_BUCKET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if os.Getenv("FRONTEND_URL") == "" {
		log.Warn("FRONTEND_URL not set - CORS may not work correctly")
	}
	for _, key := range []string{"SMTP_HOST", "SMTP_PORT", "SMTP_FROM"} {
		if os.Getenv(key) == "" {
			log.Warn(key + " not set - email notifications will not work")
		}
	}
	if os.Getenv("SHOP_EMAIL") == "" {
		log.Warn("SHOP_EMAIL not set - order inquiries will only be stored")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		// bare numbers are seconds
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// Load reads the configuration from the environment. Call LoadEnv first to
// pick up a .env file.
func Load() (Config, error) {
	cfg := Config{
		Port:           GetEnv("PORT", "8080"),
		Env:            GetEnv("GO_ENV", "development"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		DBDriver:       strings.ToLower(GetEnv("DB_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     GetEnv("SQLITE_PATH", "farmstore.db"),
		StorageDriver:  strings.ToLower(GetEnv("STORAGE_DRIVER", "database")),
		FirebaseBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		ShopEmail: os.Getenv("SHOP_EMAIL"),
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver)
	}
	switch cfg.StorageDriver {
	case "database", "memory", "firebase":
	default:
		return Config{}, fmt.Errorf("STORAGE_DRIVER must be database, memory or firebase, got %q", cfg.StorageDriver)
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 720*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTTL, err = getDuration("SESSION_IDLE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ToastTTL, err = getDuration("TOAST_TTL", 5*time.Second); err != nil {
		return Config{}, err
	}

	for _, o := range []string{os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL")} {
		if o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}
