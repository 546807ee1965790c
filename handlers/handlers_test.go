package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"lexassist/middleware"
	"lexassist/models"
	"lexassist/services/audit"
	"lexassist/services/chat"
	"lexassist/services/lawyer"
	"lexassist/services/license"
	"lexassist/services/payment"
	"lexassist/services/user"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := license.RegisterValidators(v); err != nil {
			panic(err)
		}
	}
	os.Exit(m.Run())
}

// Fakes embed the service interface; calling an unstubbed method panics.

type fakeLicenses struct {
	license.LicenseService
	checkoutPlan string
	webhookErr   error
}

func (f *fakeLicenses) CreateCheckout(_ context.Context, userID, planID string) (*models.CheckoutSession, error) {
	f.checkoutPlan = planID
	return &models.CheckoutSession{PaymentID: "pay-1", PlanID: planID}, nil
}

func (f *fakeLicenses) HandleWebhook(_ context.Context, payload []byte, sig string) error {
	return f.webhookErr
}

type fakeChats struct {
	chat.ChatService
	err error
}

func (f *fakeChats) SendMessage(_ context.Context, userID, sessionID, text string) (*models.ChatReply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ChatReply{HoursCharged: 0.1}, nil
}

type fakeUsers struct {
	user.UserService
	devices   []models.Device
	suspended map[string]bool
}

func (f *fakeUsers) GetDevices(_ context.Context, userID string) ([]models.Device, error) {
	return f.devices, nil
}

func (f *fakeUsers) SetSuspended(_ context.Context, _ audit.Actor, userID string, suspended bool) error {
	if f.suspended == nil {
		f.suspended = map[string]bool{}
	}
	f.suspended[userID] = suspended
	return nil
}

type fakeLawyers struct {
	lawyer.LawyerService
	mine     *models.VerificationRequest
	uploaded []byte
	kind     string
	name     string
}

func (f *fakeLawyers) Mine(_ context.Context, userID string) (*models.VerificationRequest, error) {
	return f.mine, nil
}

func (f *fakeLawyers) UploadDocument(_ context.Context, userID, kind, fileName string, r io.Reader) (*models.VerificationDocument, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.uploaded, f.kind, f.name = b, kind, fileName
	return &models.VerificationDocument{Kind: kind, FileName: fileName, PublicID: "verification/u1/x.pdf"}, nil
}

// withUser stands in for the auth middleware.
func withUser(id, role, device string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id)
		c.Set(middleware.CtxRole, role)
		c.Set(middleware.CtxDeviceID, device)
		c.Next()
	}
}

func do(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"wrapped sentinel", fmt.Errorf("consume: %w", license.ErrNoActiveLicense), http.StatusPaymentRequired, license.ErrNoActiveLicense.Error()},
		{"detailed", fmt.Errorf("%w: must be at least 8 characters long", user.ErrWeakPassword), http.StatusBadRequest, "password too weak: must be at least 8 characters long"},
		{"not found", lawyer.ErrRequestNotFound, http.StatusNotFound, lawyer.ErrRequestNotFound.Error()},
		{"unmapped", errors.New("mongo: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, errorBody(t, w))
		})
	}
}

func TestCheckoutValidatesPlan(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"purchasable plan", `{"planId":"starter"}`, http.StatusCreated},
		{"trial is not for sale", `{"planId":"trial"}`, http.StatusBadRequest},
		{"unknown plan", `{"planId":"platinum"}`, http.StatusBadRequest},
		{"missing plan", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLicenses{}
			h := &LicenseHandler{LicenseService: svc}
			r := gin.New()
			r.POST("/checkout", withUser("u1", models.RoleUser, "d1"), h.CheckoutHandler)

			w := do(r, http.MethodPost, "/checkout", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusCreated {
				assert.Equal(t, "starter", svc.checkoutPlan)
			} else {
				assert.Empty(t, svc.checkoutPlan)
			}
		})
	}
}

func TestWebhook(t *testing.T) {
	t.Run("bad signature", func(t *testing.T) {
		h := &LicenseHandler{LicenseService: &fakeLicenses{webhookErr: fmt.Errorf("verify: %w", payment.ErrInvalidSignature)}}
		r := gin.New()
		r.POST("/webhook", h.WebhookHandler)
		w := do(r, http.MethodPost, "/webhook", strings.NewReader(`{}`), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("accepted", func(t *testing.T) {
		h := &LicenseHandler{LicenseService: &fakeLicenses{}}
		r := gin.New()
		r.POST("/webhook", h.WebhookHandler)
		w := do(r, http.MethodPost, "/webhook", strings.NewReader(`{}`), "application/json")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})
}

func TestSendMessageStatuses(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"ok", `{"content":"Can my landlord keep my deposit?"}`, nil, http.StatusOK},
		{"no license", `{"content":"hello"}`, license.ErrNoActiveLicense, http.StatusPaymentRequired},
		{"model down", `{"content":"hello"}`, fmt.Errorf("%w: timeout", chat.ErrLLMUnavailable), http.StatusBadGateway},
		{"unknown session", `{"content":"hello"}`, chat.ErrSessionNotFound, http.StatusNotFound},
		{"missing content", `{}`, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &ChatHandler{ChatService: &fakeChats{err: tt.err}}
			r := gin.New()
			r.POST("/sessions/:id/messages", withUser("u1", models.RoleUser, "d1"), h.SendHandler)
			w := do(r, http.MethodPost, "/sessions/s1/messages", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestDevicesMarksCurrent(t *testing.T) {
	h := &UserHandler{UserService: &fakeUsers{devices: []models.Device{{DeviceID: "d1"}, {DeviceID: "d2"}}}}
	r := gin.New()
	r.GET("/devices", withUser("u1", models.RoleUser, "d2"), h.DevicesHandler)

	w := do(r, http.MethodGet, "/devices", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Devices []models.Device `json:"devices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Devices, 2)
	assert.False(t, body.Devices[0].Current)
	assert.True(t, body.Devices[1].Current)
}

func TestSuspendRequiresFlag(t *testing.T) {
	users := &fakeUsers{}
	h := &AdminHandler{UserService: users}
	r := gin.New()
	r.PATCH("/users/:id/suspend", withUser("admin", models.RoleAdmin, "d1"), h.SuspendHandler)

	w := do(r, http.MethodPatch, "/users/u9/suspend", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, users.suspended)

	w = do(r, http.MethodPatch, "/users/u9/suspend", strings.NewReader(`{"suspended":false}`), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
	suspended, ok := users.suspended["u9"]
	assert.True(t, ok)
	assert.False(t, suspended)
}

func TestDashboardRejectsBadWindow(t *testing.T) {
	h := &AdminHandler{}
	r := gin.New()
	r.GET("/dashboard", h.DashboardHandler)

	for _, q := range []string{"?days=0", "?days=abc", "?since=yesterday"} {
		w := do(r, http.MethodGet, "/dashboard"+q, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestVerificationMineNotFound(t *testing.T) {
	h := &VerificationHandler{LawyerService: &fakeLawyers{}}
	r := gin.New()
	r.GET("/verification", withUser("u1", models.RoleUser, "d1"), h.MineHandler)

	w := do(r, http.MethodGet, "/verification", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadDocument(t *testing.T) {
	svc := &fakeLawyers{}
	h := &VerificationHandler{LawyerService: svc}
	r := gin.New()
	r.POST("/documents", withUser("u1", models.RoleUser, "d1"), h.UploadDocumentHandler)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("kind", models.DocBarLicense))
	fw, err := mw.CreateFormFile("file", "bar.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := do(r, http.MethodPost, "/documents", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.DocBarLicense, svc.kind)
	assert.Equal(t, "bar.pdf", svc.name)
	assert.Equal(t, []byte("%PDF-1.4 test"), svc.uploaded)

	t.Run("missing file", func(t *testing.T) {
		w := do(r, http.MethodPost, "/documents", strings.NewReader(""), "multipart/form-data; boundary=x")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
