package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/noticeboard-api/internal/repository"
	"github.com/noah-isme/noticeboard-api/internal/service"
	"github.com/noah-isme/noticeboard-api/pkg/cache"
	"github.com/noah-isme/noticeboard-api/pkg/config"
	"github.com/noah-isme/noticeboard-api/pkg/database"
	"github.com/noah-isme/noticeboard-api/pkg/logger"
	"github.com/noah-isme/noticeboard-api/pkg/storage"
)

const redisKeyPrefix = "noticeboard:"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Error("database connection failed", zap.Error(err))
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.Database, logr); err != nil {
			logr.Error("migrations failed", zap.Error(err))
			return err
		}
	}

	metrics := service.NewMetricsService()

	cacheRepo, closeCache, err := newCacheRepository(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer closeCache()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TopNoticesTTL, logr)

	store, err := storage.NewAttachmentStore(cfg.Upload.BasePath, storage.WithMaxFileSize(cfg.Upload.MaxFileSizeBytes))
	if err != nil {
		logr.Error("attachment store unavailable", zap.String("path", cfg.Upload.BasePath), zap.Error(err))
		return err
	}

	noticeSvc := service.NewNoticeService(
		repository.NewNoticeRepository(db, metrics),
		store,
		cacheSvc,
		metrics,
		validator.New(),
		logr,
		service.NoticeServiceConfig{
			TopNoticesTTL: cfg.Cache.TopNoticesTTL,
			MaxFiles:      cfg.Upload.MaxFiles,
		},
	)

	router := newRouter(cfg, logr, routerDeps{
		notices: noticeSvc,
		tokens:  service.NewTokenService(cfg.JWT.Secret),
		metrics: metrics,
		ready:   database.NewReadinessChecker(db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "cache", cfg.Cache.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logr.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCacheRepository picks the top notices cache backend. An unreachable
// Redis falls back to the in-process LRU when allowed.
func newCacheRepository(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func(), error) {
	memory := func() (service.CacheRepository, func(), error) {
		return repository.NewMemoryCacheRepository(cfg.Cache.MaxEntries, cfg.Cache.TopNoticesTTL), func() {}, nil
	}
	if cfg.Cache.Driver != config.CacheDriverRedis {
		return memory()
	}

	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		if !cfg.Cache.FallbackMemory {
			logr.Error("redis unavailable", zap.Error(err))
			return nil, nil, err
		}
		logr.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return memory()
	}
	repo := repository.NewCacheRepository(client, redisKeyPrefix, logr)
	return repo, func() { _ = repo.Close() }, nil
}
