package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lexassist/models"
	"lexassist/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUsers map[string]*models.User

func (m memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func newAuthRouter(users AuthUserSource, cache *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(DeviceDetailsMiddleware(), JWTAuthUserMiddleware(users, cache))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(CtxUserID), "role": c.GetString(CtxRole)})
	})
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func authRequest(path, token, deviceID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if deviceID != "" {
		req.Header.Set("X-Device-ID", deviceID)
		req.Header.Set("X-Device-Name", "Pixel")
	}
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type authFixture struct {
	users memUsers
	cache *redis.Client
	mr    *miniredis.Miniredis
	token string
}

func newAuthFixture(t *testing.T, role string) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	token, err := utils.GenerateToken("u1", "jane@example.com", "d1", models.RoleUser, time.Hour)
	require.NoError(t, err)
	users := memUsers{"u1": {
		ID:      "u1",
		Role:    role,
		Devices: []models.Device{{DeviceID: "d1", TokenHash: utils.HashToken(token)}},
	}}
	return &authFixture{users: users, cache: cache, mr: mr, token: token}
}

func TestDeviceDetailsRequired(t *testing.T) {
	f := newAuthFixture(t, models.RoleUser)
	w := serve(newAuthRouter(f.users, f.cache), authRequest("/me", f.token, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	f := newAuthFixture(t, models.RoleUser)
	r := newAuthRouter(f.users, f.cache)

	tests := []struct {
		name   string
		token  string
		device string
		want   int
	}{
		{"no token", "", "d1", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", "d1", http.StatusUnauthorized},
		{"other device", f.token, "d2", http.StatusUnauthorized},
		{"valid", f.token, "d1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, authRequest("/me", tt.token, tt.device))
			assert.Equal(t, tt.want, w.Code)
		})
	}

	raw, err := f.mr.Get(utils.AuthCacheKey("u1", "d1"))
	require.NoError(t, err)
	var e authEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, utils.HashToken(f.token), e.TokenHash)
	assert.Equal(t, models.RoleUser, e.Role)
}

func TestJWTAuthUsesCache(t *testing.T) {
	f := newAuthFixture(t, models.RoleUser)
	r := newAuthRouter(f.users, f.cache)
	require.Equal(t, http.StatusOK, serve(r, authRequest("/me", f.token, "d1")).Code)

	// Served from cache even though the account is gone from the store.
	delete(f.users, "u1")
	assert.Equal(t, http.StatusOK, serve(r, authRequest("/me", f.token, "d1")).Code)

	// Invalidation sends the next request back to the store.
	f.mr.Del(utils.AuthCacheKey("u1", "d1"))
	assert.Equal(t, http.StatusUnauthorized, serve(r, authRequest("/me", f.token, "d1")).Code)
}

func TestJWTAuthRotatedToken(t *testing.T) {
	f := newAuthFixture(t, models.RoleUser)
	r := newAuthRouter(f.users, f.cache)
	f.users["u1"].Devices[0].TokenHash = "rotated"
	assert.Equal(t, http.StatusUnauthorized, serve(r, authRequest("/me", f.token, "d1")).Code)
}

func TestJWTAuthSuspended(t *testing.T) {
	f := newAuthFixture(t, models.RoleUser)
	f.users["u1"].Suspended = true
	w := serve(newAuthRouter(f.users, f.cache), authRequest("/me", f.token, "d1"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, f.mr.Exists(utils.AuthCacheKey("u1", "d1")))
}

func TestJWTAuthWithoutCache(t *testing.T) {
	f := newAuthFixture(t, models.RoleUser)
	w := serve(newAuthRouter(f.users, nil), authRequest("/me", f.token, "d1"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	// The token claims "user"; the stored role wins.
	f := newAuthFixture(t, models.RoleAdmin)
	r := newAuthRouter(f.users, f.cache)
	assert.Equal(t, http.StatusNoContent, serve(r, authRequest("/admin", f.token, "d1")).Code)

	g := newAuthFixture(t, models.RoleUser)
	r = newAuthRouter(g.users, g.cache)
	assert.Equal(t, http.StatusForbidden, serve(r, authRequest("/admin", g.token, "d1")).Code)
}

func TestRateLimiter(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2)
	rl.now = func() time.Time { return fixed }

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":5555"
		return serve(r, req).Code
	}
	assert.Equal(t, http.StatusOK, get("192.0.2.1"))
	assert.Equal(t, http.StatusOK, get("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("192.0.2.1"))
	assert.Equal(t, http.StatusOK, get("192.0.2.2"))

	fixed = fixed.Add(31 * time.Second)
	assert.Equal(t, http.StatusOK, get("192.0.2.1"))
}

func TestMetricsMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(MetricsMiddleware(), RequestLogger())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/ping/7", nil))
	assert.Positive(t, testutil.CollectAndCount(utils.HTTPRequestDuration))
}
