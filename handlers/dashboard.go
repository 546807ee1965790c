package handlers

import (
	"net/http"

	"lexassist/services/analytics"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	AnalyticsService analytics.AnalyticsService
}

// UserDashboardHandler handles GET /api/dashboard.
func (h *DashboardHandler) UserDashboardHandler(c *gin.Context) {
	d, err := h.AnalyticsService.UserDashboard(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// LawyerDashboardHandler handles GET /api/lawyer/dashboard.
func (h *DashboardHandler) LawyerDashboardHandler(c *gin.Context) {
	d, err := h.AnalyticsService.LawyerDashboard(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
