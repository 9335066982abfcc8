package email

import (
	"context"

	"donation_backend/internal/models"
)

// ReceiptSender отправляет донору квитанцию после успешного пожертвования.
type ReceiptSender interface {
	SendDonationReceipt(ctx context.Context, donation *models.Donation) error
}

// Message - одно исходящее письмо
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}
