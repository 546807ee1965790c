package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexassist/config"
	"lexassist/cron"
	"lexassist/database"
	auditRepo "lexassist/database/repository/audit"
	chatRepo "lexassist/database/repository/chat"
	faqRepo "lexassist/database/repository/faq"
	licenseRepo "lexassist/database/repository/license"
	moderationRepo "lexassist/database/repository/moderation"
	userRepoPkg "lexassist/database/repository/user"
	verificationRepo "lexassist/database/repository/verification"
	"lexassist/handlers"
	"lexassist/models"
	"lexassist/routes"
	"lexassist/services/analytics"
	"lexassist/services/audit"
	"lexassist/services/chat"
	"lexassist/services/content"
	"lexassist/services/faq"
	ai "lexassist/services/intelligence"
	"lexassist/services/lawyer"
	"lexassist/services/license"
	"lexassist/services/moderation"
	"lexassist/services/notification"
	"lexassist/services/payment"
	"lexassist/services/storage"
	"lexassist/services/user"
	"lexassist/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// lawyerAccounts joins the user repository lookup with the service-level
// promotion the verification workflow needs.
type lawyerAccounts struct {
	repo userRepoPkg.UserRepository
	svc  user.UserService
}

func (a lawyerAccounts) GetByID(ctx context.Context, id string) (*models.User, error) {
	return a.repo.GetByID(ctx, id)
}

func (a lawyerAccounts) PromoteToLawyer(ctx context.Context, userID string, profile models.LawyerProfile) error {
	return a.svc.PromoteToLawyer(ctx, userID, profile)
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()
	if err := config.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitRedis()
	db := database.DB()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo(db)
	licRepo := licenseRepo.NewMongoLicenseRepo(db)
	chRepo := chatRepo.NewMongoChatRepo(db)
	fRepo := faqRepo.NewMongoFAQRepo(db)
	modRepo := moderationRepo.NewMongoModerationRepo(db)
	verRepo := verificationRepo.NewMongoVerificationRepo(db)
	audRepo := auditRepo.NewMongoAuditRepo(db)

	// external clients.
	var notifier notification.NotificationService = notification.LogNotificationService{}
	if file := config.AppConfig.FirebaseCredentialsFile; file != "" {
		fcm, err := notification.NewFCMClient(rootCtx, file)
		if err != nil {
			logger.Fatal("main: failed to initialize FCM", zap.Error(err))
		}
		notifier = &notification.FCMNotificationService{Users: userRepo, Client: fcm}
	} else {
		logger.Warn("main: FIREBASE_CREDENTIALS_FILE not set, push notifications are logged only")
	}

	gemini, err := ai.NewGeminiClient(rootCtx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		logger.Fatal("main: failed to initialize Gemini", zap.Error(err))
	}
	defer gemini.Close()
	ctxStore := ai.NewRedisContextStore(utils.GetCacheClient(), 30*time.Minute)

	var gateway payment.Gateway
	if config.AppConfig.StripeKey != "" {
		gateway = payment.NewStripeGateway(config.AppConfig.StripeKey, config.AppConfig.StripeWebhookSecret)
	} else {
		logger.Warn("main: STRIPE_KEY not set, checkout is disabled")
	}

	var docs storage.StorageService
	cld, err := storage.NewCloudinaryStorage(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
	)
	switch {
	case err == nil:
		docs = cld
	case err == storage.ErrNotConfigured:
		logger.Warn("main: Cloudinary not configured, verification uploads are disabled")
	default:
		logger.Fatal("main: failed to initialize Cloudinary", zap.Error(err))
	}

	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()

	// services.
	auditService := &audit.DefaultAuditService{Repo: audRepo}

	licenseService := &license.DefaultLicenseService{
		Repo:     licRepo,
		Users:    userRepo,
		Payments: gateway,
		Audit:    auditService,
		Notifier: notifier,
		Queue:    queue,
	}

	userService := &user.DefaultUserService{
		Repo:     userRepo,
		Licenses: licenseService,
		Chats:    chRepo,
		Audit:    auditService,
		Cache:    utils.GetAuthCacheClient(),
		TokenTTL: time.Duration(config.AppConfig.TokenTTLHours) * time.Hour,
	}

	moderationService := &moderation.DefaultModerationService{
		Repo:     modRepo,
		Accounts: userService,
		Audit:    auditService,
		Notifier: notifier,
	}

	chatService := &chat.DefaultChatService{
		Repo:       chRepo,
		Licenses:   licenseService,
		Moderation: moderationService,
		LLM:        gemini,
		Context:    ctxStore,
		MinCharge:  time.Duration(config.AppConfig.ChatMinChargeSeconds) * time.Second,
		IdleCap:    time.Duration(config.AppConfig.ChatIdleCapSeconds) * time.Second,
	}

	faqService := &faq.DefaultFAQService{
		Repo:       fRepo,
		Users:      userRepo,
		LLM:        gemini,
		Moderation: moderationService,
		Audit:      auditService,
		Notifier:   notifier,
		Queue:      queue,
		AutoDraft:  config.AppConfig.FAQAutoDraft,
	}

	lawyerService := &lawyer.DefaultLawyerService{
		Repo:     verRepo,
		Accounts: lawyerAccounts{repo: userRepo, svc: userService},
		Storage:  docs,
		Audit:    auditService,
		Notifier: notifier,
	}

	analyticsService := &analytics.DefaultAnalyticsService{
		Users:         userRepo,
		Licenses:      licRepo,
		FAQs:          fRepo,
		Chats:         chRepo,
		Moderation:    modRepo,
		Verifications: verRepo,
		Dashboards: analytics.DashboardSources{
			Users:        userService,
			Licenses:     licenseService,
			Chats:        chatService,
			FAQs:         faqService,
			Verification: lawyerService,
		},
	}

	// background processing.
	worker := cron.StartWorker(faqService, licenseService)
	scheduler, err := cron.StartScheduler(config.AppConfig.LicenseSweepSchedule, licenseService)
	if err != nil {
		logger.Fatal("main: failed to start license sweep", zap.Error(err))
	}
	utils.StartHealthMonitor(rootCtx, []*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	handlerBundle := &handlers.HandlerBundle{
		UserRepo:     userRepo,
		AuthCache:    utils.GetAuthCacheClient(),
		User:         &handlers.UserHandler{UserService: userService},
		License:      &handlers.LicenseHandler{LicenseService: licenseService},
		Chat:         &handlers.ChatHandler{ChatService: chatService},
		FAQ:          &handlers.FAQHandler{FAQService: faqService},
		Verification: &handlers.VerificationHandler{LawyerService: lawyerService},
		Admin: &handlers.AdminHandler{
			UserService:       userService,
			LicenseService:    licenseService,
			ModerationService: moderationService,
			AuditService:      auditService,
			AnalyticsService:  analyticsService,
		},
		Dashboard: &handlers.DashboardHandler{AnalyticsService: analyticsService},
		Public:    &handlers.PublicHandler{ContentService: &content.DefaultContentService{}},
	}
	router := routes.NewRouter(handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	<-scheduler.Stop().Done()
	worker.Shutdown()
	stop()
	if err := database.Close(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
