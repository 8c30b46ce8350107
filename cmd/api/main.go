package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/cache"
	"github.com/trimworks/booking-api/internal/config"
	dbpkg "github.com/trimworks/booking-api/internal/db"
	"github.com/trimworks/booking-api/internal/logger"
	"github.com/trimworks/booking-api/internal/metrics"
	"github.com/trimworks/booking-api/internal/middleware"
	"github.com/trimworks/booking-api/internal/routes"
)

func main() {

	cfg := config.Load()

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db := dbpkg.NewDB(cfg)

	// Redis is an optimization, not a dependency: slot generation works
	// uncached, so a missing cache only logs a warning.
	slots, err := cache.New(cfg.RedisURL)
	if err != nil {
		zlog.Warn("redis_unavailable", zap.Error(err))
		slots = nil
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := slots.Ping(ctx); err != nil {
			zlog.Warn("redis_unreachable", zap.Error(err))
			slots = nil
		}
		cancel()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(logger.GinMiddleware(zlog))
	r.Use(metrics.Middleware())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, zlog, slots)

	zlog.Info("server_starting", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		zlog.Fatal("server_failed", zap.Error(err))
	}
}
