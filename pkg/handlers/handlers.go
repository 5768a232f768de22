package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/apperrors"
	"github.com/reliefnet/disaster-api/pkg/assist"
	"github.com/reliefnet/disaster-api/pkg/auth"
	"github.com/reliefnet/disaster-api/pkg/directory"
	"github.com/reliefnet/disaster-api/pkg/models"
	"github.com/reliefnet/disaster-api/pkg/registry"
	"github.com/reliefnet/disaster-api/pkg/store"
	"go.uber.org/zap"
)

const (
	tokenCookie = "token"
	ctxClaims   = "claims"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Registry     *registry.Registry
	Directory    *directory.Directory
	Tokens       *auth.TokenManager
	Store        *store.Store
	Predictor    *assist.Predictor
	Responder    assist.Responder
	Logger       *zap.Logger
	CookieSecure bool
}

// Routes registers every endpoint on r
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Disaster Relief API",
			"version": "1.0.0",
		})
	})
	r.GET("/healthz", h.Health)

	emergencies := r.Group("/emergencies")
	{
		emergencies.GET("", h.ListEmergencies)
		emergencies.POST("", h.CreateEmergency)
		emergencies.GET("/:id", h.GetEmergency)
		emergencies.POST("/:id/accept", h.AcceptEmergency)
		emergencies.POST("/:id/decline", h.DeclineEmergency)
	}

	api := r.Group("/api")
	{
		// Routes used by the original web client
		api.GET("/emergency", h.ListEmergencies)
		api.POST("/emergency", h.CreateEmergency)
		api.GET("/emergencies", h.ListEmergencies)
		api.POST("/accept", h.LegacyAccept)
		api.POST("/decline", h.LegacyDecline)

		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)

		api.GET("/profile", h.AuthMiddleware(), h.GetProfile)
		api.PUT("/profile", h.AuthMiddleware(), h.UpdateProfile)

		api.POST("/predict", h.Predict)
		api.POST("/chat", h.Chat)
	}

	admin := r.Group("/api/admin")
	admin.Use(h.AuthMiddleware(), RequireRole(models.RoleAdmin))
	{
		admin.GET("/accounts", h.ListAccounts)
		admin.GET("/document", h.ExportDocument)
	}
}

// Health reports whether the datastore answers
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.Store.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.Logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AuthMiddleware verifies the session token from the Authorization header or
// the token cookie
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = token[7:]
		}
		if token == "" {
			token, _ = c.Cookie(tokenCookie)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		claims, err := h.Tokens.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid token"})
			return
		}

		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose token carries a different role.
// It must run after AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok || claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// respondError maps a service error to a status code and a short message
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		ve *apperrors.ValidationError
		nf *apperrors.NotFoundError
		aa *apperrors.AlreadyAcceptedError
		na *apperrors.NotAcceptedError
		ce *apperrors.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.As(err, &aa):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already accepted this emergency"})
	case errors.As(err, &na):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have not accepted this emergency"})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(nf.Resource) + " not found"})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{"error": ce.Message})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		_ = c.Error(err)
		h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
