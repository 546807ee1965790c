package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"lexassist/middleware"
	"lexassist/models"
	"lexassist/services/analytics"
	"lexassist/services/audit"
	"lexassist/services/chat"
	"lexassist/services/faq"
	"lexassist/services/lawyer"
	"lexassist/services/license"
	"lexassist/services/moderation"
	"lexassist/services/payment"
	"lexassist/services/storage"
	"lexassist/services/user"
	"lexassist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request-scoped logger set by middleware.RequestLogger.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get(middleware.CtxLogger); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// errorStatus maps a sentinel to a status. detailed responses carry the
// wrapped message instead of the sentinel's.
type errorStatus struct {
	err      error
	status   int
	detailed bool
}

var errorStatuses = []errorStatus{
	{user.ErrEmailTaken, http.StatusConflict, false},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, false},
	{user.ErrSuspended, http.StatusForbidden, false},
	{user.ErrDeviceLimit, http.StatusForbidden, false},
	{user.ErrTermsNotAccepted, http.StatusBadRequest, false},
	{user.ErrWeakPassword, http.StatusBadRequest, true},
	{user.ErrInvalidName, http.StatusBadRequest, false},
	{user.ErrUserNotFound, http.StatusNotFound, false},
	{user.ErrWrongPassword, http.StatusBadRequest, false},
	{user.ErrInvalidRole, http.StatusBadRequest, false},
	{user.ErrSelfAction, http.StatusBadRequest, false},
	{user.ErrInvalidPushToken, http.StatusBadRequest, false},

	{license.ErrNoActiveLicense, http.StatusPaymentRequired, false},
	{license.ErrTrialAlreadyUsed, http.StatusConflict, false},
	{license.ErrTrialNotRenewable, http.StatusConflict, false},
	{license.ErrUnknownPlan, http.StatusBadRequest, false},
	{license.ErrPlanNotPurchasable, http.StatusBadRequest, false},
	{license.ErrLicenseNotFound, http.StatusNotFound, false},
	{license.ErrLicenseNotActive, http.StatusConflict, false},
	{license.ErrPaymentNotFound, http.StatusNotFound, false},
	{license.ErrPaymentNotCompleted, http.StatusConflict, false},
	{license.ErrPaymentFailed, http.StatusPaymentRequired, false},
	{license.ErrPaymentsDisabled, http.StatusServiceUnavailable, false},
	{license.ErrInvalidHours, http.StatusBadRequest, false},
	{license.ErrUserNotFound, http.StatusNotFound, false},
	{payment.ErrInvalidSignature, http.StatusBadRequest, false},

	{chat.ErrSessionNotFound, http.StatusNotFound, false},
	{chat.ErrEmptyMessage, http.StatusBadRequest, false},
	{chat.ErrMessageTooLong, http.StatusBadRequest, false},
	{chat.ErrLLMUnavailable, http.StatusBadGateway, false},

	{faq.ErrFAQNotFound, http.StatusNotFound, false},
	{faq.ErrQuestionLength, http.StatusBadRequest, false},
	{faq.ErrContentRejected, http.StatusUnprocessableEntity, false},
	{faq.ErrInvalidTransition, http.StatusConflict, false},
	{faq.ErrAnswerRequired, http.StatusBadRequest, false},
	{faq.ErrNotLawyer, http.StatusForbidden, false},
	{faq.ErrLLMUnavailable, http.StatusBadGateway, false},

	{moderation.ErrItemNotFound, http.StatusNotFound, false},
	{moderation.ErrAlreadyReviewed, http.StatusConflict, false},
	{moderation.ErrInvalidAction, http.StatusBadRequest, false},
	{moderation.ErrSelfAction, http.StatusForbidden, false},

	{lawyer.ErrUserNotFound, http.StatusNotFound, false},
	{lawyer.ErrAlreadyLawyer, http.StatusConflict, false},
	{lawyer.ErrAdminAccount, http.StatusConflict, false},
	{lawyer.ErrPendingRequestExists, http.StatusConflict, false},
	{lawyer.ErrBarLicenseRequired, http.StatusBadRequest, false},
	{lawyer.ErrTooManyDocuments, http.StatusBadRequest, false},
	{lawyer.ErrForeignDocument, http.StatusBadRequest, false},
	{lawyer.ErrInvalidDocumentKind, http.StatusBadRequest, false},
	{lawyer.ErrUnsupportedType, http.StatusUnsupportedMediaType, false},
	{lawyer.ErrFileTooLarge, http.StatusRequestEntityTooLarge, false},
	{lawyer.ErrEmptyFile, http.StatusBadRequest, false},
	{lawyer.ErrMissingFields, http.StatusBadRequest, false},
	{lawyer.ErrRequestNotFound, http.StatusNotFound, false},
	{lawyer.ErrNotPending, http.StatusConflict, false},
	{lawyer.ErrNoteRequired, http.StatusBadRequest, false},
	{lawyer.ErrDocumentNotFound, http.StatusNotFound, false},
	{lawyer.ErrInvalidStatus, http.StatusBadRequest, false},
	{storage.ErrNotConfigured, http.StatusServiceUnavailable, false},

	{analytics.ErrInvalidWindow, http.StatusBadRequest, false},
	{analytics.ErrUserNotFound, http.StatusNotFound, false},
	{analytics.ErrNotLawyer, http.StatusForbidden, false},
}

// respondError maps a service error onto a status and aborts. Unmapped
// errors are logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			msg := e.err.Error()
			if e.detailed {
				msg = err.Error()
			}
			c.AbortWithStatusJSON(e.status, gin.H{"error": msg})
			return
		}
	}
	getLogger(c).Error("Request failed", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// badRequest reports a binding or parsing failure as {message, details}.
func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserID)
}

func actorFrom(c *gin.Context) audit.Actor {
	return audit.Actor{
		ID:   c.GetString(middleware.CtxUserID),
		Role: c.GetString(middleware.CtxRole),
		IP:   c.ClientIP(),
	}
}

func deviceFrom(c *gin.Context) models.Device {
	return models.Device{
		DeviceID:   c.GetString(middleware.CtxDeviceID),
		DeviceName: c.GetString(middleware.CtxDeviceName),
		IP:         c.GetString(middleware.CtxDeviceIP),
		Location:   c.GetString(middleware.CtxDeviceLocation),
	}
}

// pageFrom reads ?page= and ?pageSize=; bad values fall back to defaults.
func pageFrom(c *gin.Context) models.Page {
	n, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("pageSize"))
	return models.Page{Number: n, Size: size}.Normalize()
}

type paged[T any] struct {
	Items []T         `json:"items"`
	Total int64       `json:"total"`
	Page  models.Page `json:"page"`
}

func pageOf[T any](items []T, total int64, page models.Page) paged[T] {
	if items == nil {
		items = []T{}
	}
	return paged[T]{Items: items, Total: total, Page: page}
}
