package handlers

import (
	"net/http"
	"strconv"
	"time"

	"lexassist/models"
	"lexassist/services/analytics"
	"lexassist/services/audit"
	"lexassist/services/license"
	"lexassist/services/moderation"
	"lexassist/services/user"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	UserService       user.UserService
	LicenseService    license.LicenseService
	ModerationService moderation.ModerationService
	AuditService      audit.AuditService
	AnalyticsService  analytics.AnalyticsService
}

// sinceFrom reads ?since= (RFC3339) or ?days=. Zero means the default window.
func sinceFrom(c *gin.Context) (time.Time, error) {
	if raw := c.Query("since"); raw != "" {
		return time.Parse(time.RFC3339, raw)
	}
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return time.Time{}, analytics.ErrInvalidWindow
		}
		return time.Now().AddDate(0, 0, -days), nil
	}
	return time.Time{}, nil
}

// DashboardHandler handles GET /api/admin/dashboard.
func (h *AdminHandler) DashboardHandler(c *gin.Context) {
	since, err := sinceFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.AnalyticsService.Overview(c.Request.Context(), since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *AdminHandler) UsageHandler(c *gin.Context) {
	since, err := sinceFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	points, err := h.AnalyticsService.UsageSeries(c.Request.Context(), since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

// ListUsersHandler handles GET /api/admin/users?role=&suspended=&page=.
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	filter := models.UserListFilter{Role: c.Query("role"), Page: pageFrom(c)}
	if raw := c.Query("suspended"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Suspended = &b
	}
	users, total, err := h.UserService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(users, total, filter.Page))
}

func (h *AdminHandler) SuspendHandler(c *gin.Context) {
	var req struct {
		Suspended *bool `json:"suspended" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.UserService.SetSuspended(c.Request.Context(), actorFrom(c), c.Param("id"), *req.Suspended); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "suspended": *req.Suspended})
}

func (h *AdminHandler) SetRoleHandler(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.UserService.SetRole(c.Request.Context(), actorFrom(c), c.Param("id"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) UserLicensesHandler(c *gin.Context) {
	ls, err := h.LicenseService.ListForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if ls == nil {
		ls = []models.UserLicense{}
	}
	c.JSON(http.StatusOK, gin.H{"licenses": ls})
}

func (h *AdminHandler) GrantLicenseHandler(c *gin.Context) {
	var req license.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.LicenseService.Grant(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *AdminHandler) RevokeLicenseHandler(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.LicenseService.Revoke(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// ModerationQueueHandler handles GET /api/admin/moderation?status=.
func (h *AdminHandler) ModerationQueueHandler(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.ModerationService.Queue(c.Request.Context(), c.Query("status"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(items, total, page))
}

func (h *AdminHandler) ModerationReviewHandler(c *gin.Context) {
	var req models.ModerationReview
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.ModerationService.Review(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// AuditHandler handles GET /api/admin/audit?actor=&action=&target=&since=.
func (h *AdminHandler) AuditHandler(c *gin.Context) {
	filter := models.AuditFilter{
		ActorID:  c.Query("actor"),
		Action:   c.Query("action"),
		TargetID: c.Query("target"),
		Page:     pageFrom(c),
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Since = since
	}
	entries, total, err := h.AuditService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(entries, total, filter.Page))
}
