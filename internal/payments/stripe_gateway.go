package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"donation_backend/internal/logger"
	"donation_backend/internal/models"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// VerifySignatures включает проверку подписи вебхуков; игнорируется
	// при пустом WebhookSecret.
	VerifySignatures bool
	// BaseURL подменяет адрес API (stripe-mock, тесты)
	BaseURL string
	Timeout time.Duration
}

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	verify        bool
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		LeveledLogger:     &stripeLogger{log: logger.With("component", "stripe")},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendConfig.URL = stripe.String(strings.TrimRight(cfg.BaseURL, "/"))
	}

	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}

	return &StripeGateway{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		verify:        cfg.VerifySignatures && cfg.WebhookSecret != "",
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error) {
	p := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.ReceiptEmail != "" {
		p.ReceiptEmail = stripe.String(params.ReceiptEmail)
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}
	p.Context = ctx

	pi, err := g.api.PaymentIntents.New(p)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return toPaymentIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	p := &stripe.PaymentIntentParams{}
	p.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, p)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve payment intent %s: %w", intentID, err)
	}
	return toPaymentIntent(pi), nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	var event stripe.Event

	if g.verify {
		var err error
		event, err = webhook.ConstructEventWithOptions(payload, signatureHeader, g.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", ErrInvalidPayload)
	}

	result := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if strings.HasPrefix(result.Type, "payment_intent.") {
		if event.Data == nil || len(event.Data.Raw) == 0 {
			return nil, fmt.Errorf("%w: event %s has no data object", ErrInvalidPayload, event.ID)
		}
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		result.PaymentIntentID = pi.ID
	}

	return result, nil
}

func toPaymentIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       models.PaymentStatus(pi.Status),
	}
}

// stripeLogger перенаправляет логи stripe-go в slog.
type stripeLogger struct {
	log *slog.Logger
}

func (l *stripeLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *stripeLogger) Infof(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l *stripeLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l *stripeLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
