package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Secondary DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	SMTP      SMTPConfig
	CORS      CORSConfig
	Log       LogConfig
	Entities  EntityConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig governs the server-side session store and its cookie.
type SessionConfig struct {
	CookieName  string
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

// SMTPConfig points at the outbound mail relay used by diagnostics.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level            string
	Format           string
	SlowRequestAfter time.Duration
}

// EntityConfig holds the pagination defaults applied to every generated
// entity resource unless overridden at registration.
type EntityConfig struct {
	DefaultLimit int
	MaxLimit     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Secondary = DatabaseConfig{
		Host:         v.GetString("SECONDARY_DB_HOST"),
		Port:         v.GetInt("SECONDARY_DB_PORT"),
		User:         v.GetString("SECONDARY_DB_USER"),
		Password:     v.GetString("SECONDARY_DB_PASSWORD"),
		Name:         v.GetString("SECONDARY_DB_NAME"),
		SSLMode:      v.GetString("SECONDARY_DB_SSL_MODE"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		CookieName:  v.GetString("SESSION_COOKIE_NAME"),
		TTL:         parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		RememberTTL: parseDuration(v.GetString("SESSION_REMEMBER_TTL"), 30*24*time.Hour),
		Secure:      cfg.Env == EnvProduction,
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:            v.GetString("LOG_LEVEL"),
		Format:           v.GetString("LOG_FORMAT"),
		SlowRequestAfter: parseDuration(v.GetString("SLOW_REQUEST_AFTER"), 2*time.Second),
	}

	cfg.Entities = EntityConfig{
		DefaultLimit: v.GetInt("ENTITY_DEFAULT_LIMIT"),
		MaxLimit:     v.GetInt("ENTITY_MAX_LIMIT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "qc_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("SECONDARY_DB_HOST", "")
	v.SetDefault("SECONDARY_DB_PORT", 5432)
	v.SetDefault("SECONDARY_DB_USER", "postgres")
	v.SetDefault("SECONDARY_DB_PASSWORD", "")
	v.SetDefault("SECONDARY_DB_NAME", "")
	v.SetDefault("SECONDARY_DB_SSL_MODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_COOKIE_NAME", "qc_session")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_REMEMBER_TTL", "720h")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SLOW_REQUEST_AFTER", "2s")

	v.SetDefault("ENTITY_DEFAULT_LIMIT", 20)
	v.SetDefault("ENTITY_MAX_LIMIT", 100)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
