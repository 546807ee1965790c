package routes

import (
	"time"

	"lexassist/config"
	"lexassist/handlers"
	"lexassist/middleware"
	"lexassist/models"
	"lexassist/services/license"
	"lexassist/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the engine with global middleware and every route.
func NewRouter(hb *handlers.HandlerBundle) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := license.RegisterValidators(v); err != nil {
			utils.GetLogger().Fatal("Failed to register validators", zap.Error(err))
		}
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		utils.ErrorHandler(),
		middleware.RequestLogger(),
		middleware.MetricsMiddleware(),
		middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin),
	)
	RegisterRoutes(r, hb)
	return r
}

// RegisterUserRoutes registers account endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	api.Use(middleware.DeviceDetailsMiddleware())
	{
		api.POST("/register", hb.User.RegisterHandler)
		api.POST("/login", hb.User.LoginHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo, hb.AuthCache))
		api.GET("/me", hb.User.MeHandler)
		api.PATCH("/me", hb.User.UpdateMeHandler)
		api.DELETE("/me", hb.User.DeleteMeHandler)
		api.PUT("/password", hb.User.UpdatePasswordHandler)
		api.PUT("/push-token", hb.User.PushTokenHandler)
		api.GET("/devices", hb.User.DevicesHandler)
		api.POST("/devices/signout-others", hb.User.SignOutOthersHandler)
		api.DELETE("/logout", hb.User.LogoutHandler)
	}
}

// RegisterMemberRoutes registers the endpoints of any signed-in account.
func RegisterMemberRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.DeviceDetailsMiddleware(), middleware.JWTAuthUserMiddleware(hb.UserRepo, hb.AuthCache))
	{
		api.GET("/dashboard", hb.Dashboard.UserDashboardHandler)

		api.GET("/licenses", hb.License.StatusHandler)
		api.POST("/licenses/checkout", hb.License.CheckoutHandler)
		api.POST("/licenses/confirm", hb.License.ConfirmHandler)
		api.POST("/licenses/:id/renew", hb.License.RenewHandler)

		api.POST("/chat/sessions", hb.Chat.CreateSessionHandler)
		api.GET("/chat/sessions", hb.Chat.ListSessionsHandler)
		api.GET("/chat/sessions/:id/messages", hb.Chat.MessagesHandler)
		api.POST("/chat/sessions/:id/messages", hb.Chat.SendHandler)

		api.POST("/faqs", hb.FAQ.SubmitHandler)
		api.GET("/faqs/mine", hb.FAQ.MineHandler)

		api.POST("/verification/documents", hb.Verification.UploadDocumentHandler)
		api.POST("/verification", hb.Verification.SubmitHandler)
		api.GET("/verification", hb.Verification.MineHandler)
	}
}

// RegisterLawyerRoutes registers endpoints for verified lawyers.
func RegisterLawyerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/lawyer")
	api.Use(
		middleware.DeviceDetailsMiddleware(),
		middleware.JWTAuthUserMiddleware(hb.UserRepo, hb.AuthCache),
		middleware.RequireRole(models.RoleLawyer),
	)
	{
		api.GET("/dashboard", hb.Dashboard.LawyerDashboardHandler)
		api.GET("/faqs", hb.FAQ.OpenHandler)
		api.POST("/faqs/:id/answer", hb.FAQ.LawyerAnswerHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	api.Use(
		middleware.DeviceDetailsMiddleware(),
		middleware.JWTAuthUserMiddleware(hb.UserRepo, hb.AuthCache),
		middleware.RequireRole(models.RoleAdmin),
	)
	{
		api.GET("/dashboard", hb.Admin.DashboardHandler)
		api.GET("/analytics/usage", hb.Admin.UsageHandler)

		api.GET("/users", hb.Admin.ListUsersHandler)
		api.PATCH("/users/:id/suspend", hb.Admin.SuspendHandler)
		api.PATCH("/users/:id/role", hb.Admin.SetRoleHandler)
		api.GET("/users/:id/licenses", hb.Admin.UserLicensesHandler)
		api.POST("/licenses/grant", hb.Admin.GrantLicenseHandler)
		api.POST("/licenses/:id/revoke", hb.Admin.RevokeLicenseHandler)

		api.GET("/faqs/queue", hb.FAQ.QueueHandler)
		api.POST("/faqs/:id/draft", hb.FAQ.DraftHandler)
		api.POST("/faqs/:id/review", hb.FAQ.ReviewHandler)
		api.POST("/faqs/:id/archive", hb.FAQ.ArchiveHandler)

		api.GET("/moderation", hb.Admin.ModerationQueueHandler)
		api.POST("/moderation/:id/review", hb.Admin.ModerationReviewHandler)

		api.GET("/verifications", hb.Verification.QueueHandler)
		api.POST("/verifications/:id/review", hb.Verification.ReviewHandler)
		api.GET("/verifications/:id/documents/:index", hb.Verification.DocumentHandler)

		api.GET("/audit", hb.Admin.AuditHandler)
	}
}

// RegisterPublicRoutes registers unauthenticated endpoints.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", handlers.HealthHandler)
	if config.AppConfig.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/public")
	{
		api.GET("/plans", hb.Public.PlansHandler)
		api.GET("/legal", hb.Public.LegalHandler)
		api.GET("/legal/:id", hb.Public.LegalSectionHandler)
		api.GET("/faqs", hb.FAQ.PublicListHandler)
		api.GET("/faqs/:id", hb.FAQ.PublicGetHandler)
	}
	r.POST("/api/payments/webhook", hb.License.WebhookHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Device-ID", "X-Device-Name", "X-Device-Location"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterPublicRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterMemberRoutes(r, hb)
	RegisterLawyerRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
