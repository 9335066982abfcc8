package services

import (
	"donation_backend/internal/email"
	"donation_backend/internal/payments"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	DonationService DonationService
	AdminService    AdminService
	SessionService  SessionService
	Gateway         payments.Gateway
	ReceiptSender   email.ReceiptSender
}
