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
	"github.com/reliefnet/disaster-api/pkg/app"
	"github.com/reliefnet/disaster-api/pkg/config"
	"github.com/reliefnet/disaster-api/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnvFiles()
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("could not start", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("could not run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error shutting down server", zap.Error(err))
	}
	logger.Info("server stopped")
}
