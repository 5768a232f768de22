package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/models"
)

// ListAccounts returns the accounts of the role given in the query, or every
// collection when role is omitted
func (h *Handler) ListAccounts(c *gin.Context) {
	roleParam := c.Query("role")
	if roleParam != "" {
		role, ok := models.ParseRole(roleParam)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Allowed roles are: user, admin, agency, volunteer"})
			return
		}
		accounts, err := h.Directory.ListAccounts(c.Request.Context(), role)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{role.Collection(): accounts})
		return
	}

	out := gin.H{}
	for _, role := range models.Roles {
		accounts, err := h.Directory.ListAccounts(c.Request.Context(), role)
		if err != nil {
			h.respondError(c, err)
			return
		}
		out[role.Collection()] = accounts
	}
	c.JSON(http.StatusOK, out)
}

// ExportDocument returns every collection. Password hashes are never included.
func (h *Handler) ExportDocument(c *gin.Context) {
	doc, err := h.Store.Read(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
