package config

import (
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultViewCooldownMinutes is used when VIEW_COOLDOWN_MINUTES is not set.
const DefaultViewCooldownMinutes = 180

// Config holds all configuration for the application
type Config struct {
	Port           string
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	JWTSecret      string
	TokenTTL       time.Duration
	UploadDir      string
	ModeratorKey   string
	AdminKey       string
	LogLevel       string

	// ViewCooldown of zero disables the cooldown and every view counts.
	ViewCooldown time.Duration
	ViewStore    string
	RedisURL     string

	StorageBackend string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string
}

// Load returns the application configuration.
// Values from a .env file are loaded first; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found, using environment only")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_PATH", "parking.db")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MODERATOR_KEY", "")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VIEW_COOLDOWN_MINUTES", DefaultViewCooldownMinutes)
	v.SetDefault("VIEW_STORE", "database")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "parking-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")

	return &Config{
		Port:           v.GetString("PORT"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabasePath:   v.GetString("DATABASE_PATH"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		UploadDir:      v.GetString("UPLOAD_DIR"),
		ModeratorKey:   v.GetString("MODERATOR_KEY"),
		AdminKey:       v.GetString("ADMIN_KEY"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		ViewCooldown:   CooldownFromMinutes(v.GetFloat64("VIEW_COOLDOWN_MINUTES")),
		ViewStore:      strings.ToLower(v.GetString("VIEW_STORE")),
		RedisURL:       v.GetString("REDIS_URL"),
		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		MinioEndpoint:  v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey: v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey: v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:    v.GetString("MINIO_BUCKET"),
		MinioUseSSL:    v.GetBool("MINIO_USE_SSL"),
		MinioPublicURL: v.GetString("MINIO_PUBLIC_URL"),
	}
}

// ErrMissingJWTSecret is returned by Validate when no signing secret is configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// placeholderSecrets are sample values that must never sign real tokens.
var placeholderSecrets = map[string]bool{
	"your-secret-key": true,
	"changeme":        true,
}

// Validate reports configuration the server must not start with.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" || placeholderSecrets[secret] {
		return ErrMissingJWTSecret
	}
	return nil
}

// CooldownFromMinutes converts a configured minute count into a duration.
// Zero, negative, NaN and infinite values all yield 0, which disables the cooldown.
func CooldownFromMinutes(minutes float64) time.Duration {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes * float64(time.Minute))
}
