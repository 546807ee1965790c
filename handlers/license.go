package handlers

import (
	"io"
	"net/http"

	"lexassist/services/license"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody bounds the Stripe payload read into memory.
const maxWebhookBody = 64 << 10

type LicenseHandler struct {
	LicenseService license.LicenseService
}

// StatusHandler handles GET /api/licenses.
func (h *LicenseHandler) StatusHandler(c *gin.Context) {
	st, err := h.LicenseService.Status(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *LicenseHandler) CheckoutHandler(c *gin.Context) {
	var req struct {
		PlanID string `json:"planId" binding:"required,licenseplan"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.LicenseService.CreateCheckout(c.Request.Context(), currentUserID(c), req.PlanID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ConfirmHandler handles POST /api/licenses/confirm after the client
// completed payment.
func (h *LicenseHandler) ConfirmHandler(c *gin.Context) {
	var req struct {
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := h.LicenseService.ConfirmPayment(c.Request.Context(), currentUserID(c), req.PaymentIntentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LicenseHandler) RenewHandler(c *gin.Context) {
	session, err := h.LicenseService.Renew(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// WebhookHandler handles POST /api/payments/webhook from Stripe.
func (h *LicenseHandler) WebhookHandler(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.LicenseService.HandleWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		getLogger(c).Warn("Webhook rejected", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
