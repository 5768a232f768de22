package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/models"
)

// Register creates a user, volunteer or agency account
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	acct, err := h.Directory.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "data": acct})
}

// Login verifies credentials, returns the token and sets it as an HTTP-only cookie
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	acct, token, err := h.Directory.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(tokenCookie, token, int(h.Tokens.TTL().Seconds()), "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    acct,
		"token":   token,
	})
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// GetProfile returns the caller's account
func (h *Handler) GetProfile(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	acct, err := h.Directory.Profile(c.Request.Context(), claims.AccountID, claims.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// UpdateProfile edits the caller's contact fields
func (h *Handler) UpdateProfile(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if invalid := unknownProfileFields(raw); len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fields", "fields": invalid})
		return
	}

	var upd models.ProfileUpdate
	if err := decodeInto(raw, &upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile fields must be strings"})
		return
	}

	if _, err := h.Directory.UpdateProfile(c.Request.Context(), claims.AccountID, claims.Role, upd); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
