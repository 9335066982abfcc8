package payments

import (
	"context"
	"errors"

	"donation_backend/internal/models"
)

// EventPaymentIntentSucceeded - единственный тип события, меняющий пожертвование.
const EventPaymentIntentSucceeded = "payment_intent.succeeded"

var (
	// ErrInvalidSignature - заголовок подписи отсутствует или неверен
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidPayload - тело вебхука не является событием процессора
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

// Gateway - платежный процессор с точки зрения учета пожертвований.
// Каждый вызов - одна попытка, повторы на стороне вызывающего.
type Gateway interface {
	// CreateIntent создает платеж и возвращает intent с client secret
	CreateIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error)

	// GetIntent получает актуальное состояние intent
	GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error)

	// ParseWebhook проверяет (если настроено) и декодирует вебхук
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

type CreateIntentParams struct {
	Amount       int64 // в центах
	Currency     string
	ReceiptEmail string
	Metadata     map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       models.PaymentStatus
}

type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string // пусто для событий без payment intent
}
