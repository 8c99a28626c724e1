package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache drivers supported by the top notices cache.
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

type Config struct {
	Env             string
	Port            int
	APIPrefix       string
	AutoMigrate     bool
	ShutdownTimeout time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Upload   UploadConfig
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

// CacheConfig selects and tunes the top notices cache backend.
type CacheConfig struct {
	Driver         string
	TopNoticesTTL  time.Duration
	MaxEntries     int
	FallbackMemory bool
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadConfig controls where and how notice attachments are written.
type UploadConfig struct {
	BasePath         string
	MaxFiles         int
	MaxFileSizeBytes int64
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = strings.TrimRight(v.GetString("API_PREFIX"), "/")
	cfg.AutoMigrate = v.GetBool("AUTO_MIGRATE")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second)

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

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("CACHE_DRIVER")))
	if driver != CacheDriverRedis {
		driver = CacheDriverMemory
	}
	maxEntries := v.GetInt("CACHE_MAX_ENTRIES")
	if maxEntries <= 0 {
		maxEntries = 128
	}
	cfg.Cache = CacheConfig{
		Driver:         driver,
		TopNoticesTTL:  parseDuration(v.GetString("TOP_NOTICES_CACHE_TTL"), 10*time.Minute),
		MaxEntries:     maxEntries,
		FallbackMemory: v.GetBool("CACHE_FALLBACK_MEMORY"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxFileSize := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	cfg.Upload = UploadConfig{
		BasePath:         v.GetString("UPLOAD_BASE_PATH"),
		MaxFiles:         v.GetInt("UPLOAD_MAX_FILES"),
		MaxFileSizeBytes: maxFileSize,
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "noticeboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_DRIVER", CacheDriverMemory)
	v.SetDefault("TOP_NOTICES_CACHE_TTL", "10m")
	v.SetDefault("CACHE_MAX_ENTRIES", 128)
	v.SetDefault("CACHE_FALLBACK_MEMORY", true)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOAD_BASE_PATH", "./uploads")
	v.SetDefault("UPLOAD_MAX_FILES", 10)
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 10*1024*1024)
}

// DSN renders the lib/pq keyword connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

// URL renders the postgres:// form expected by golang-migrate.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode)
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
