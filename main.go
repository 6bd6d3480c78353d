package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pragatipath-be/config"
	"pragatipath-be/media"
	"pragatipath-be/middlewares"
	"pragatipath-be/models"
	"pragatipath-be/otp"
	"pragatipath-be/routes"
	"pragatipath-be/services"
	"pragatipath-be/store"
	"pragatipath-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

type dataStore interface {
	services.UserStore
	services.IssueStore
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var st dataStore
	switch cfg.Database.Driver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		st = store.NewMemory()
	default:
		db, err := config.ConnectDB(ctx, cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			return err
		}
		defer func() { _ = db.Client().Disconnect(context.Background()) }()
		logger.Info("MongoDB connection established successfully", zap.String("database", cfg.Database.Name))

		if err := models.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		st = store.NewMongo(db)
	}

	var redisClient *redis.Client
	if cfg.RedisRequired() {
		client, err := config.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		redisClient = client
		logger.Info("Redis connection established", zap.String("address", cfg.Redis.Address))
	}

	var ledger otp.Ledger
	switch cfg.Auth.OTPStore {
	case config.OTPRedis:
		ledger = otp.NewRedisLedger(redisClient, "otp")
	default:
		mem := otp.NewMemoryLedger()
		go mem.Run(ctx, otp.SweepInterval, logger)
		ledger = mem
	}

	storage, err := newMediaStorage(ctx, cfg.Media)
	if err != nil {
		return err
	}

	tokens, err := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	authService := services.NewAuthService(st, ledger, tokens, logger,
		services.WithOTPTTL(cfg.Auth.OTPTTL),
		services.WithOTPLogging(!cfg.IsProduction()),
	)
	issueService := services.NewIssueService(st, media.NewProcessor(storage), logger)

	opts := routes.Options{
		Auth:            authService,
		Issues:          issueService,
		Tokens:          tokens,
		Logger:          logger,
		CORSOrigins:     cfg.Server.CORSOrigins,
		IssueDailyLimit: cfg.Issues.DailyLimit,
	}
	if cfg.Issues.DailyLimit > 0 {
		opts.IssueQuota = middlewares.NewRedisQuota(redisClient, cfg.Issues.LimitKeyPrefix)
	}
	if cfg.Media.Storage == config.MediaDisk {
		opts.UploadDir = cfg.Media.UploadDir
		opts.UploadPublicPath = cfg.Media.PublicPath
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMediaStorage(ctx context.Context, cfg config.MediaConfig) (media.Storage, error) {
	if cfg.Storage != config.MediaS3 {
		return media.NewDiskStorage(cfg.UploadDir, cfg.PublicPath)
	}

	client, err := media.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Endpoint)
	if err != nil {
		return nil, err
	}
	baseURL := cfg.PublicBaseURL
	if baseURL == "" && cfg.S3Endpoint != "" {
		baseURL = strings.TrimSuffix(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return media.NewS3Storage(client, cfg.S3Bucket, cfg.AWSRegion, cfg.S3Prefix, baseURL), nil
}
