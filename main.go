package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpLayer "payment-allocator/http"
	"payment-allocator/repository"
	"payment-allocator/service"
)

type config struct {
	port          string
	redisAddr     string
	baselineScore int
}

// loadConfig lee la configuración de variables de entorno con valores por defecto.
func loadConfig() config {
	cfg := config{
		port:          getEnv("PORT", "8080"),
		redisAddr:     os.Getenv("REDIS_ADDR"),
		baselineScore: service.DefaultBaselineScore,
	}
	if raw := os.Getenv("BASELINE_SCORE"); raw != "" {
		if score, err := strconv.Atoi(raw); err == nil {
			cfg.baselineScore = score
		}
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := loadConfig()

	planRepo := repository.NewPlanRepositoryMemory()

	var cache repository.CacheRepository
	if cfg.redisAddr != "" {
		cache = repository.NewRedisCache(cfg.redisAddr)
	} else {
		cache = repository.NewMockCache()
	}

	scoreService := service.NewScoreService(cfg.baselineScore)
	allocationService := service.NewAllocationService(planRepo, cache, scoreService, logger)
	overrideService := service.NewOverrideService(scoreService)

	allocationHandler := httpLayer.NewAllocationHandler(allocationService)
	overrideHandler := httpLayer.NewOverrideHandler(overrideService)
	scoreHandler := httpLayer.NewScoreHandler(scoreService)

	rateLimiter := httpLayer.NewRateLimiter(30, time.Minute)
	defer rateLimiter.Stop()

	mux := http.NewServeMux()
	mux.Handle(
		"/allocation/plan",
		httpLayer.RateLimitMiddleware(
			rateLimiter,
			logger,
			http.HandlerFunc(allocationHandler.ComputePlan),
		),
	)

	mux.Handle(
		"/allocation/override",
		httpLayer.RateLimitMiddleware(
			rateLimiter,
			logger,
			http.HandlerFunc(overrideHandler.ApplyOverride),
		),
	)

	mux.Handle(
		"/allocation/score-preview",
		httpLayer.RateLimitMiddleware(
			rateLimiter,
			logger,
			http.HandlerFunc(scoreHandler.PreviewScoreImpact),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.port,
		Handler:      httpLayer.LoggingMiddleware(logger, mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("🚀 API corriendo", zap.String("addr", "http://localhost:"+cfg.port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("error starting server", zap.Error(err))
		return
	case <-quit:
		logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
