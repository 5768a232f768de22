package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/assist"
	"github.com/reliefnet/disaster-api/pkg/auth"
	"github.com/reliefnet/disaster-api/pkg/config"
	"github.com/reliefnet/disaster-api/pkg/database"
	"github.com/reliefnet/disaster-api/pkg/directory"
	"github.com/reliefnet/disaster-api/pkg/handlers"
	"github.com/reliefnet/disaster-api/pkg/logging"
	"github.com/reliefnet/disaster-api/pkg/registry"
	"github.com/reliefnet/disaster-api/pkg/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is a fully wired API: datastore, services and router
type App struct {
	DB     *gorm.DB
	Store  *store.Store
	Engine *gin.Engine
	Logger *zap.Logger
}

// New opens the datastore described by cfg, seeds the default admin and
// builds the router.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.DatabaseURL, cfg.DataPath)
	if err != nil {
		return nil, err
	}
	s := store.New(db)

	if err := auth.EnsureAdminExists(ctx, s, logger, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	h := &handlers.Handler{
		Registry:     registry.New(s, logger),
		Directory:    directory.New(s, tokens, logger),
		Tokens:       tokens,
		Store:        s,
		Predictor:    assist.NewPredictor(cfg.PredictURL),
		Logger:       logger,
		CookieSecure: cfg.CookieSecure,
	}

	responder, err := assist.NewGenAIResponder(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
	switch {
	case err == nil:
		h.Responder = responder
	case errors.Is(err, assist.ErrChatUnavailable):
		logger.Info("chat assistant disabled, GENAI_API_KEY not set")
	default:
		logger.Warn("chat assistant disabled", zap.Error(err))
	}

	r := gin.New()
	r.Use(logging.GinLogger(logger), gin.Recovery(), cors.New(corsConfig(cfg.CORSOrigins)))
	h.Routes(r)

	return &App{DB: db, Store: s, Engine: r, Logger: logger}, nil
}

// Close releases the datastore
func (a *App) Close() error {
	return database.Close(a.DB)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
