package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	DonationHandler *DonationHandler
	WebhookHandler  *WebhookHandler
	AdminHandler    *AdminHandler
	HealthHandler   *HealthHandler
}
