package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reliefnet/disaster-api/pkg/models"
)

// ListEmergencies returns every emergency, [] when there are none
func (h *Handler) ListEmergencies(c *gin.Context) {
	list, err := h.Registry.ListEmergencies(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateEmergency files a new emergency
func (h *Handler) CreateEmergency(c *gin.Context) {
	var req models.CreateEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title, description, and reporter are required"})
		return
	}

	e, err := h.Registry.CreateEmergency(c.Request.Context(), req.Title, req.Description, req.ReporterID())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// GetEmergency returns one emergency
func (h *Handler) GetEmergency(c *gin.Context) {
	e, err := h.Registry.GetEmergency(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// AcceptEmergency adds the volunteer named in the body to the emergency
func (h *Handler) AcceptEmergency(c *gin.Context) {
	var req models.VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volunteerName is required"})
		return
	}

	e, err := h.Registry.AcceptEmergency(c.Request.Context(), c.Param("id"), req.VolunteerName)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DeclineEmergency withdraws the volunteer named in the body
func (h *Handler) DeclineEmergency(c *gin.Context) {
	var req models.VolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volunteerName is required"})
		return
	}

	e, err := h.Registry.DeclineEmergency(c.Request.Context(), c.Param("id"), req.VolunteerName)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// LegacyAccept handles POST /api/accept {emergencyId, volunteer}
func (h *Handler) LegacyAccept(c *gin.Context) {
	var req models.LegacyVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EmergencyID == "" || req.Volunteer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Emergency ID and volunteer are required"})
		return
	}

	e, err := h.Registry.AcceptEmergency(c.Request.Context(), req.EmergencyID, req.Volunteer)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// LegacyDecline handles POST /api/decline {emergencyId, volunteer}
func (h *Handler) LegacyDecline(c *gin.Context) {
	var req models.LegacyVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EmergencyID == "" || req.Volunteer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Emergency ID and volunteer are required"})
		return
	}

	e, err := h.Registry.DeclineEmergency(c.Request.Context(), req.EmergencyID, req.Volunteer)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
