package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Xaeon-Innovation/Medflow-sub000/cache"
	"github.com/Xaeon-Innovation/Medflow-sub000/config"
	"github.com/Xaeon-Innovation/Medflow-sub000/controllers"
	"github.com/Xaeon-Innovation/Medflow-sub000/routes"
	"github.com/Xaeon-Innovation/Medflow-sub000/security"
	"github.com/Xaeon-Innovation/Medflow-sub000/worker"
)

func main() {
	config.LoadEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	config.ConnectDB()

	var appCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		appCache = cache.NewRedis(addr)
		logger.Info("using redis cache", zap.String("addr", addr))
	} else {
		appCache = cache.NewMemory()
		logger.Info("using in-memory cache")
	}

	controllers.Init(appCache, logger)

	r := gin.Default()

	// Add CORS middleware from shared module
	r.Use(security.CORSMiddleware())

	api := r.Group("/api/v1")
	routes.AuthRoutes(api)

	// Everything past this point requires a valid access token
	api.Use(security.AuthMiddleware(config.DB))
	routes.DirectoryRoutes(api)
	routes.VisitRoutes(api)
	routes.CommissionRoutes(api)

	scheduler := worker.NewScheduler(config.DB, logger)
	scheduler.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	scheduler.Stop()

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
