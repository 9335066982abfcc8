package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"donation_backend/internal/auth"
	"donation_backend/internal/config"
	"donation_backend/internal/database"
	"donation_backend/internal/email"
	"donation_backend/internal/handlers"
	"donation_backend/internal/logger"
	"donation_backend/internal/middleware"
	"donation_backend/internal/payments"
	"donation_backend/internal/repositories"
	"donation_backend/internal/routes"
	"donation_backend/internal/services"
	"donation_backend/internal/validator"
	"donation_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func Run() {
	cfg := config.GetConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Migration failed", "error", err)
		}
		logger.Info("Database migrated")
	}

	serviceContainer, err := initializeServices(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = serviceContainer.AdminService.SeedBootstrapAdmin(ctx, gormDB.WithContext(ctx),
		cfg.Admin.BootstrapUsername, cfg.Admin.BootstrapPassword)
	if err != nil {
		logger.Fatal("Failed to seed bootstrap admin", "error", err)
	}

	ginRouter := BuildRouter(cfg, gormDB, serviceContainer, database.Ping(gormDB))

	workerDone := workers.NewSessionWorker(gormDB, serviceContainer.SessionService,
		time.Duration(cfg.Session.CleanupInterval)*time.Minute).Start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("Server startup error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	stop()
	<-workerDone

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

// BuildRouter собирает middleware, хэндлеры и маршруты вокруг готовых сервисов.
func BuildRouter(cfg *config.Config, gormDB *gorm.DB, container *services.ServiceContainer, ping func(context.Context) error) *gin.Engine {
	appHandlers := initializeHandlers(cfg, container, ping)
	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, container.SessionService, cfg.Session.CookieName)
	return ginRouter
}

func initializeServices(cfg *config.Config) (*services.ServiceContainer, error) {
	signer, err := auth.NewTokenSigner(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}

	verifyWebhooks := cfg.SignedWebhooksRequired() && cfg.Stripe.WebhookSecret != ""
	if !verifyWebhooks {
		logger.Warn("Webhook signatures are NOT verified; payloads are trusted as sent")
	}
	gateway := payments.NewStripeGateway(payments.StripeConfig{
		SecretKey:        cfg.Stripe.SecretKey,
		WebhookSecret:    cfg.Stripe.WebhookSecret,
		VerifySignatures: verifyWebhooks,
		BaseURL:          cfg.Stripe.APIBaseURL,
	})

	receipts, err := initializeReceipts(cfg)
	if err != nil {
		return nil, err
	}

	// --- Репозитории ---
	donationRepo := repositories.NewDonationRepository()
	adminUserRepo := repositories.NewAdminUserRepository()
	sessionRepo := repositories.NewAdminSessionRepository()

	// --- Сервисы ---
	sessionService := services.NewSessionService(sessionRepo, signer, cfg.SessionTTL())
	adminService := services.NewAdminService(adminUserRepo, sessionService)
	donationService := services.NewDonationService(donationRepo, gateway, receipts, services.DonationServiceConfig{
		Currency:             cfg.Stripe.Currency,
		ReconcileConcurrency: cfg.Stripe.ReconcileConcurrency,
	})

	return &services.ServiceContainer{
		DonationService: donationService,
		AdminService:    adminService,
		SessionService:  sessionService,
		Gateway:         gateway,
		ReceiptSender:   receipts,
	}, nil
}

func initializeReceipts(cfg *config.Config) (email.ReceiptSender, error) {
	if !cfg.SMTPEnabled() {
		logger.Warn("SMTP is not configured, donation receipts are disabled")
		return email.NoopProvider{}, nil
	}

	templates, err := email.NewTemplateManager()
	if err != nil {
		return nil, err
	}
	provider := email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	}, templates)
	if err := provider.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SMTP config: %w", err)
	}
	return provider, nil
}

func initializeHandlers(cfg *config.Config, container *services.ServiceContainer, ping func(context.Context) error) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		DonationHandler: handlers.NewDonationHandler(baseHandler, container.DonationService),
		WebhookHandler:  handlers.NewWebhookHandler(baseHandler, container.DonationService),
		AdminHandler: handlers.NewAdminHandler(baseHandler, container.AdminService, container.SessionService, handlers.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: !cfg.IsDevelopment(),
		}),
		HealthHandler: handlers.NewHealthHandler(ping),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
