package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/assist"
	"github.com/reliefnet/disaster-api/pkg/models"
	"go.uber.org/zap"
)

const maxPredictBody = 1 << 20

// Predict relays the request body to the prediction backend
func (h *Handler) Predict(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPredictBody))
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be JSON"})
		return
	}

	result, err := h.Predictor.Predict(c.Request.Context(), body)
	if err != nil {
		h.Logger.Warn("prediction backend failed", zap.Error(err))
		details := "prediction backend unavailable"
		var be *assist.BackendError
		if errors.As(err, &be) {
			details = be.Error()
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch prediction", "details": details})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Chat answers a message through the support chatbot
func (h *Handler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if h.Responder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": assist.ErrChatUnavailable.Error()})
		return
	}

	reply, err := h.Responder.Reply(c.Request.Context(), req.Message)
	if err != nil {
		h.Logger.Warn("chat backend failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "API request failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
