// Package config loads settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	OTPMemory = "memory"
	OTPRedis  = "redis"

	MediaDisk = "disk"
	MediaS3   = "s3"
)

type ServerConfig struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URI    string `yaml:"uri"`
	Name   string `yaml:"name"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	OTPStore  string        `yaml:"otp_store"`
	OTPTTL    time.Duration `yaml:"otp_ttl"`
}

type IssueConfig struct {
	DailyLimit     int    `yaml:"daily_limit"`
	LimitKeyPrefix string `yaml:"limit_key_prefix"`
}

type MediaConfig struct {
	Storage       string `yaml:"storage"`
	UploadDir     string `yaml:"upload_dir"`
	PublicPath    string `yaml:"public_path"`
	S3Bucket      string `yaml:"s3_bucket"`
	S3Prefix      string `yaml:"s3_prefix"`
	AWSRegion     string `yaml:"aws_region"`
	PublicBaseURL string `yaml:"public_base_url"`
	S3Endpoint    string `yaml:"s3_endpoint"`
}

// Config holds all configuration for the server and the admin CLI.
type Config struct {
	Env      string         `yaml:"env"`
	LogLevel string         `yaml:"log_level"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Issues   IssueConfig    `yaml:"issues"`
	Media    MediaConfig    `yaml:"media"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RedisRequired reports whether any enabled feature needs Redis.
func (c *Config) RedisRequired() bool {
	return c.Auth.OTPStore == OTPRedis || c.Issues.DailyLimit > 0
}

func defaults() *Config {
	return &Config{
		Env:      "development",
		LogLevel: "info",
		Server: ServerConfig{
			Port:        "4000",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{Driver: StoreMongo, Name: "pragatipath"},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
			OTPStore: OTPMemory,
			OTPTTL:   10 * time.Minute,
		},
		Issues: IssueConfig{LimitKeyPrefix: "issue-limit"},
		Media: MediaConfig{
			Storage:    MediaDisk,
			UploadDir:  "uploads",
			PublicPath: "/api/uploads",
			AWSRegion:  "ap-south-1",
		},
	}
}

// Load reads the configuration and validates it for running the server.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads .env (if present), then CONFIG_FILE (if set), then environment overrides.
func Read() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Env, "GO_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Server.Port, "PORT")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}

	setString(&c.Database.Driver, "STORE_DRIVER")
	setString(&c.Database.URI, "MONGODB_URI")
	setString(&c.Database.Name, "MONGODB_DATABASE")

	setString(&c.Redis.Address, "REDIS_ADDRESS")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.OTPStore, "OTP_STORE")

	setString(&c.Issues.LimitKeyPrefix, "REDIS_QUEUE_FOR_ISSUE_LIMIT")

	setString(&c.Media.Storage, "MEDIA_STORAGE")
	setString(&c.Media.UploadDir, "UPLOAD_DIR")
	setString(&c.Media.PublicPath, "UPLOAD_PUBLIC_PATH")
	setString(&c.Media.S3Bucket, "S3_BUCKET")
	setString(&c.Media.S3Prefix, "S3_PREFIX")
	setString(&c.Media.AWSRegion, "AWS_REGION")
	setString(&c.Media.PublicBaseURL, "MEDIA_PUBLIC_BASE_URL")
	setString(&c.Media.S3Endpoint, "AWS_ENDPOINT_URL")

	var errs []error
	errs = append(errs,
		setInt(&c.Redis.DB, "REDIS_DB"),
		setInt(&c.Issues.DailyLimit, "ISSUE_DAILY_LIMIT"),
		setDuration(&c.Auth.TokenTTL, "TOKEN_TTL"),
		setDuration(&c.Auth.OTPTTL, "OTP_TTL"),
	)
	return errors.Join(errs...)
}

// Validate checks that every enabled backend has what it needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Database.Driver {
	case StoreMongo:
		if c.Database.URI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_DRIVER=mongo"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver))
	}
	switch c.Auth.OTPStore {
	case OTPMemory, OTPRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown OTP_STORE %q", c.Auth.OTPStore))
	}
	if c.RedisRequired() && c.Redis.Address == "" {
		errs = append(errs, errors.New("REDIS_ADDRESS is required when OTP_STORE=redis or ISSUE_DAILY_LIMIT>0"))
	}
	switch c.Media.Storage {
	case MediaDisk:
	case MediaS3:
		if c.Media.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when MEDIA_STORAGE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MEDIA_STORAGE %q", c.Media.Storage))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
