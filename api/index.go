package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/app"
	"github.com/reliefnet/disaster-api/pkg/config"
	"github.com/reliefnet/disaster-api/pkg/logging"
)

var engine *gin.Engine

func init() {
	// Picks up .env when running under vercel dev
	config.LoadEnvFiles()
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, "")
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("could not start: %v", err)
	}
	engine = a.Engine
}

// Handler is the entry point for the Vercel Go runtime
func Handler(w http.ResponseWriter, r *http.Request) {
	engine.ServeHTTP(w, r)
}
