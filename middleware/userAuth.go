package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"lexassist/models"
	"lexassist/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AuthUserSource loads the account behind a token.
type AuthUserSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// authEntry is what the auth cache holds per user and device.
type authEntry struct {
	TokenHash string `json:"tokenHash"`
	Role      string `json:"role"`
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// JWTAuthUserMiddleware authenticates a bearer token bound to the request's
// device. The token hash is checked against the auth cache first and the
// stored device entry on a miss. Role always comes from the account, never
// from the token. cache may be nil.
func JWTAuthUserMiddleware(users AuthUserSource, cache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "Insufficient authorization")
			return
		}
		claims, err := utils.ExtractClaims(token)
		if err != nil {
			unauthorized(c, "Insufficient authorization")
			return
		}
		deviceID := c.GetString(CtxDeviceID)
		if deviceID == "" || claims.DeviceID != deviceID {
			unauthorized(c, "Insufficient authorization")
			return
		}

		ctx := c.Request.Context()
		hash := utils.HashToken(token)
		key := utils.AuthCacheKey(claims.UserID, deviceID)

		if cache != nil {
			raw, err := cache.Get(ctx, key).Bytes()
			switch {
			case err == nil:
				var e authEntry
				if json.Unmarshal(raw, &e) == nil && e.TokenHash != "" {
					if e.TokenHash != hash {
						unauthorized(c, "Token mismatch")
						return
					}
					_ = cache.Expire(ctx, key, utils.AuthCacheTTL).Err()
					setIdentity(c, claims.UserID, e.Role)
					return
				}
			case err != redis.Nil:
				zap.L().Warn("Auth cache read failed, falling back to database", zap.Error(err))
			}
		}

		u, err := users.GetByID(ctx, claims.UserID)
		if err != nil {
			zap.L().Error("Auth user lookup failed", zap.String("userId", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication error"})
			return
		}
		if u == nil {
			unauthorized(c, "Authentication error")
			return
		}
		var stored string
		for _, d := range u.Devices {
			if d.DeviceID == deviceID {
				stored = d.TokenHash
				break
			}
		}
		if stored == "" || stored != hash {
			unauthorized(c, "Token mismatch")
			return
		}
		if u.Suspended {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
			return
		}

		if cache != nil {
			b, _ := json.Marshal(authEntry{TokenHash: hash, Role: u.Role})
			if err := cache.Set(ctx, key, b, utils.AuthCacheTTL).Err(); err != nil {
				zap.L().Warn("Auth cache write failed", zap.Error(err))
			}
		}
		setIdentity(c, u.ID, u.Role)
	}
}

func setIdentity(c *gin.Context, userID, role string) {
	c.Set(CtxUserID, userID)
	c.Set(CtxRole, role)
	if l, ok := c.Get(CtxLogger); ok {
		if logger, ok := l.(*zap.Logger); ok {
			c.Set(CtxLogger, logger.With(zap.String("userId", userID)))
		}
	}
	c.Next()
}
