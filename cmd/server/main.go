package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/nramdhani/student-tracker/internal/handler"
	"github.com/nramdhani/student-tracker/internal/middleware"
	"github.com/nramdhani/student-tracker/internal/repository"
	"github.com/nramdhani/student-tracker/internal/service"
	"github.com/nramdhani/student-tracker/pkg/cache"
	"github.com/nramdhani/student-tracker/pkg/config"
	"github.com/nramdhani/student-tracker/pkg/database"
	"github.com/nramdhani/student-tracker/pkg/logger"
	reqidmiddleware "github.com/nramdhani/student-tracker/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if err := repository.EnsureSchema(context.Background(), db); err != nil {
		logr.Sugar().Fatalw("schema bootstrap failed", "error", err)
	}

	students := repository.NewStudentRepository(db)
	grades := repository.NewGradeRepository(db)

	metrics := service.NewMetricsService()
	tracker := service.NewTrackerService(students, grades, validator.New(), logr).
		WithMetrics(metrics)

	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Cache)
		if err != nil {
			// The cache is an optimisation; averages fall back to the store.
			logr.Sugar().Warnw("redis unavailable, average cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			tracker.WithCache(redisClient, cfg.Cache.TTL)
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	r.Use(sessions.Sessions(cfg.Session.Name, store))

	handler.LoadTemplates(r, "web/templates/*.html")
	handler.NewWebHandler(tracker, logr).Register(r)
	handler.NewTrackerHandler(tracker).Register(r.Group("/api/v1"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
