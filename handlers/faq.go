package handlers

import (
	"net/http"
	"strings"

	"lexassist/models"
	"lexassist/services/faq"

	"github.com/gin-gonic/gin"
)

type FAQHandler struct {
	FAQService faq.FAQService
}

// SubmitHandler handles POST /api/faqs.
func (h *FAQHandler) SubmitHandler(c *gin.Context) {
	var req models.FAQSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.FAQService.Submit(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, f)
}

func (h *FAQHandler) MineHandler(c *gin.Context) {
	faqs, err := h.FAQService.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if faqs == nil {
		faqs = []models.FAQ{}
	}
	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

// PublicListHandler handles GET /api/public/faqs?q=&category=&page=.
func (h *FAQHandler) PublicListHandler(c *gin.Context) {
	page := pageFrom(c)
	q := strings.TrimSpace(c.Query("q"))
	if len(q) > 200 {
		q = q[:200]
	}
	faqs, total, err := h.FAQService.ListPublished(c.Request.Context(), q, strings.ToLower(c.Query("category")), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(faqs, total, page))
}

func (h *FAQHandler) PublicGetHandler(c *gin.Context) {
	f, err := h.FAQService.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// OpenHandler handles GET /api/lawyer/faqs: questions still awaiting an answer.
func (h *FAQHandler) OpenHandler(c *gin.Context) {
	page := pageFrom(c)
	faqs, total, err := h.FAQService.ListOpen(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(faqs, total, page))
}

func (h *FAQHandler) LawyerAnswerHandler(c *gin.Context) {
	var req struct {
		Answer string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.FAQService.LawyerAnswer(c.Request.Context(), actorFrom(c), c.Param("id"), req.Answer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FAQHandler) QueueHandler(c *gin.Context) {
	page := pageFrom(c)
	faqs, total, err := h.FAQService.ReviewQueue(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(faqs, total, page))
}

// DraftHandler handles POST /api/admin/faqs/:id/draft. It drafts
// synchronously so the admin sees the result.
func (h *FAQHandler) DraftHandler(c *gin.Context) {
	f, err := h.FAQService.DraftAnswer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FAQHandler) ReviewHandler(c *gin.Context) {
	var req models.FAQReview
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.FAQService.Review(c.Request.Context(), actorFrom(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *FAQHandler) ArchiveHandler(c *gin.Context) {
	f, err := h.FAQService.Archive(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
