package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classifieds/internal/cache"
	"classifieds/internal/config"
	"classifieds/internal/database"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New("classifieds-api", "info").WithError(err).Fatal("invalid configuration")
	}
	log := logger.New("classifieds-api", cfg.LogLevel)
	if envErr != nil {
		log.Info("no .env file found, reading from environment")
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	var tagCache *cache.Cache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		tagCache, err = cache.NewCache(ctx, cfg.RedisAddr, cfg.TagCacheTTL)
		cancel()
		if err != nil {
			log.WithError(err).Warn("redis unavailable, tag cache disabled")
			tagCache = nil
		} else {
			defer tagCache.Close()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	server.SetupRoutes(router, server.Deps{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		TagCache: tagCache,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited")
}
