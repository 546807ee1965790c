package handlers

import (
	"lexassist/middleware"

	"github.com/go-redis/redis/v8"
)

// HandlerBundle groups all endpoint handlers plus what the auth middleware
// needs.
type HandlerBundle struct {
	UserRepo  middleware.AuthUserSource
	AuthCache *redis.Client

	User         *UserHandler
	License      *LicenseHandler
	Chat         *ChatHandler
	FAQ          *FAQHandler
	Verification *VerificationHandler
	Admin        *AdminHandler
	Dashboard    *DashboardHandler
	Public       *PublicHandler
}
