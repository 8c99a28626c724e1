package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TopNoticesTTL)
	assert.Equal(t, 128, cfg.Cache.MaxEntries)
	assert.True(t, cfg.Cache.FallbackMemory)
	assert.Equal(t, "./uploads", cfg.Upload.BasePath)
	assert.Equal(t, 10, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{
		"API_PREFIX":            "/v1/",
		"CACHE_DRIVER":          "Redis",
		"TOP_NOTICES_CACHE_TTL": "30s",
		"ALLOWED_ORIGINS":       "http://a.test, ,http://b.test",
		"UPLOAD_MAX_FILE_SIZE":  0,
		"SHUTDOWN_TIMEOUT":      "not-a-duration",
	}))

	assert.Equal(t, "/v1", cfg.APIPrefix)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, 30*time.Second, cfg.Cache.TopNoticesTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxFileSizeBytes)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestFromViperUnknownCacheDriverUsesMemory(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"CACHE_DRIVER": "memcached"}))
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
}

func TestDatabaseConnectionStrings(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", Name: "notices", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=app password=p@ss word dbname=notices sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://app:p%40ss+word@db:5432/notices?sslmode=disable", db.URL())
}
