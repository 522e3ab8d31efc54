package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sitecms/internal/auth"
	"github.com/sitecms/internal/config"
	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/handler"
	"github.com/sitecms/internal/logging"
	"github.com/sitecms/internal/router"
	"github.com/sitecms/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(db.Options{
		Driver:       cfg.DatabaseDriver,
		DSN:          cfg.DatabaseURL,
		Path:         cfg.DatabasePath,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		Logger:       logging.NewGormLogger(logger),
	})
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close(gdb)

	if err := db.EnsureUser(gdb, cfg.SuperRootUserName, cfg.SuperRootEmail, cfg.SuperRootPassword); err != nil {
		logger.Fatal("failed to ensure super root user", zap.Error(err))
	}

	api := handler.NewAPI(
		gdb,
		logger,
		auth.NewTokenManager(cfg.TokenSecret(), cfg.JWTTTL),
		storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath, cfg.MaxUploadBytes),
	)

	r := router.SetupRouter(router.Options{
		API:           api,
		Logger:        logger,
		SessionSecret: cfg.SessionSecret,
		SessionMaxAge: cfg.JWTTTL,
		SecureCookie:  cfg.GinMode == gin.ReleaseMode,
		CORSOrigins:   cfg.CORSOrigins,
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
	})
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr), zap.String("driver", cfg.DatabaseDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
