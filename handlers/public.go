package handlers

import (
	"net/http"

	"lexassist/services/content"
	"lexassist/utils"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	ContentService content.ContentService
}

func (h *PublicHandler) PlansHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.ContentService.Plans()})
}

func (h *PublicHandler) LegalHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": h.ContentService.LegalSections()})
}

func (h *PublicHandler) LegalSectionHandler(c *gin.Context) {
	s, ok := h.ContentService.LegalSection(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "legal section not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// HealthHandler reports liveness plus the last dependency snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "Hi, I'm LexAssist",
		"dependencies": utils.GetHealthStatus(),
	})
}
