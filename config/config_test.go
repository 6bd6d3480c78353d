package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
}

func TestLoadDefaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, StoreMongo, cfg.Database.Driver)
	assert.Equal(t, "pragatipath", cfg.Database.Name)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, OTPMemory, cfg.Auth.OTPStore)
	assert.Equal(t, MediaDisk, cfg.Media.Storage)
	assert.Equal(t, "/api/uploads", cfg.Media.PublicPath)
	assert.False(t, cfg.RedisRequired())
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("GO_ENV", "production")
	t.Setenv("OTP_STORE", "redis")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("ISSUE_DAILY_LIMIT", "20")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, 20, cfg.Issues.DailyLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.RedisRequired())
}

func TestLoadConfigFile(t *testing.T) {
	setMinimalEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
database:
  name: civic
auth:
  token_ttl: 24h
media:
  storage: s3
  s3_bucket: pragati-media
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MONGODB_DATABASE", "override")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	// environment wins over the file
	assert.Equal(t, "override", cfg.Database.Name)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, MediaS3, cfg.Media.Storage)
	assert.Equal(t, "pragati-media", cfg.Media.S3Bucket)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing secret",
			env:  map[string]string{"MONGODB_URI": "mongodb://localhost"},
			want: "JWT_SECRET is required",
		},
		{
			name: "missing mongo uri",
			env:  map[string]string{"JWT_SECRET": "s"},
			want: "MONGODB_URI is required",
		},
		{
			name: "redis otp without address",
			env:  map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "OTP_STORE": "redis"},
			want: "REDIS_ADDRESS is required",
		},
		{
			name: "s3 without bucket",
			env:  map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "MEDIA_STORAGE": "s3"},
			want: "S3_BUCKET is required",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "sqlite"},
			want: `unknown STORE_DRIVER "sqlite"`,
		},
		{
			name: "bad duration",
			env:  map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "memory", "OTP_TTL": "soon"},
			want: "OTP_TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("MONGODB_URI", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadSkipsValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MONGODB_URI", "")

	cfg, err := Read()
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger("development", "not-a-level")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
