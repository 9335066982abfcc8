package routes

import (
	"donation_backend/internal/handlers"
	"donation_backend/internal/logger"
	"donation_backend/internal/middleware"
	"donation_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	sessionService services.SessionService,
	cookieName string,
) {
	root := ginRouter.Group("")
	appHandlers.HealthHandler.RegisterRoutes(root)
	appHandlers.DonationHandler.RegisterRoutes(root)
	appHandlers.WebhookHandler.RegisterRoutes(root)

	admin := ginRouter.Group("/admin-api")
	{
		admin.GET("/check-setup", appHandlers.AdminHandler.CheckSetup)
		admin.POST("/login", appHandlers.AdminHandler.Login)
		admin.POST("/register",
			middleware.OptionalSessionAuth(sessionService, cookieName),
			appHandlers.AdminHandler.Register,
		)
	}

	protected := admin.Group("")
	protected.Use(middleware.SessionAuth(sessionService, cookieName))
	{
		protected.POST("/logout", appHandlers.AdminHandler.Logout)
		protected.GET("/donations", appHandlers.DonationHandler.ListDonations)
		protected.POST("/users", appHandlers.AdminHandler.CreateUser)
	}

	logger.Info("Routes registered", "count", len(ginRouter.Routes()))
}
