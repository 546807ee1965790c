package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lexassist/config"
	"lexassist/handlers"
	"lexassist/models"
	"lexassist/services/content"
	"lexassist/services/faq"
	"lexassist/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers map[string]*models.User

func (m memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

type openFAQs struct {
	faq.FAQService
}

func (openFAQs) ListOpen(_ context.Context, page models.Page) ([]models.FAQ, int64, error) {
	return []models.FAQ{{ID: "f1", Question: "Is a verbal lease binding?"}}, 1, nil
}

type routerFixture struct {
	router http.Handler
	tokens map[string]string
}

// newRouterFixture signs in one account per role on device "d1".
func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig.MetricsEnabled = true
	config.AppConfig.MaxRequestsPerMin = 1000

	users := memUsers{}
	tokens := map[string]string{}
	for _, role := range []string{models.RoleUser, models.RoleLawyer, models.RoleAdmin} {
		token, err := utils.GenerateToken(role+"-1", role+"@example.com", "d1", role, time.Hour)
		require.NoError(t, err)
		users[role+"-1"] = &models.User{
			ID:      role + "-1",
			Role:    role,
			Devices: []models.Device{{DeviceID: "d1", TokenHash: utils.HashToken(token)}},
		}
		tokens[role] = token
	}

	hb := &handlers.HandlerBundle{
		UserRepo:     users,
		User:         &handlers.UserHandler{},
		License:      &handlers.LicenseHandler{},
		Chat:         &handlers.ChatHandler{},
		FAQ:          &handlers.FAQHandler{FAQService: openFAQs{}},
		Verification: &handlers.VerificationHandler{},
		Admin:        &handlers.AdminHandler{},
		Dashboard:    &handlers.DashboardHandler{},
		Public:       &handlers.PublicHandler{ContentService: &content.DefaultContentService{}},
	}
	return &routerFixture{router: NewRouter(hb), tokens: tokens}
}

func (f *routerFixture) get(path, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[role])
		req.Header.Set("X-Device-ID", "d1")
		req.Header.Set("X-Device-Name", "test phone")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	f := newRouterFixture(t)

	w := f.get("/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.get("/api/public/plans", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Plans []models.Plan `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Plans)

	w = f.get("/api/public/legal/tos", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.get("/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lexassist_http_request_duration_seconds")
}

func TestRoleGates(t *testing.T) {
	f := newRouterFixture(t)

	tests := []struct {
		name   string
		path   string
		role   string
		status int
	}{
		{"anonymous member route", "/api/licenses", "", http.StatusBadRequest},
		{"user on lawyer route", "/api/lawyer/faqs", models.RoleUser, http.StatusForbidden},
		{"admin on lawyer route", "/api/lawyer/faqs", models.RoleAdmin, http.StatusForbidden},
		{"lawyer on lawyer route", "/api/lawyer/faqs", models.RoleLawyer, http.StatusOK},
		{"user on admin route", "/api/admin/users", models.RoleUser, http.StatusForbidden},
		{"lawyer on admin route", "/api/admin/audit", models.RoleLawyer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.get(tt.path, tt.role)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestMissingBearerToken(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/licenses", nil)
	req.Header.Set("X-Device-ID", "d1")
	req.Header.Set("X-Device-Name", "test phone")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/users/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "X-Device-ID")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}
