package email

import (
	"context"
	"fmt"

	"donation_backend/internal/logger"
	"donation_backend/internal/models"

	"gopkg.in/gomail.v2"
)

// SMTPProvider отправляет письма через SMTP relay
type SMTPProvider struct {
	config   *SMTPConfig
	dialer   *gomail.Dialer
	renderer *TemplateManager
}

func NewSMTPProvider(config *SMTPConfig, renderer *TemplateManager) *SMTPProvider {
	return &SMTPProvider{
		config:   config,
		dialer:   gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		renderer: renderer,
	}
}

// Validate проверяет конфигурацию SMTP
func (p *SMTPProvider) Validate() error {
	if p.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if p.config.Port <= 0 || p.config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.config.Port)
	}
	if p.config.FromEmail == "" {
		return fmt.Errorf("sender address is required")
	}
	return nil
}

func (p *SMTPProvider) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := buildMessage(p.config, msg)

	// gomail не поддерживает context; соединение ограничивает сам dialer
	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (p *SMTPProvider) SendDonationReceipt(ctx context.Context, donation *models.Donation) error {
	msg, err := p.renderer.RenderReceipt(donation)
	if err != nil {
		return err
	}
	if err := p.Send(ctx, msg); err != nil {
		return err
	}
	logger.CtxInfo(ctx, "Donation receipt sent", "donation_id", donation.ID, "payment_intent_id", donation.PaymentIntentID)
	return nil
}

func buildMessage(config *SMTPConfig, msg *Message) *gomail.Message {
	m := gomail.NewMessage()
	if config.FromName != "" {
		m.SetAddressHeader("From", config.FromEmail, config.FromName)
	} else {
		m.SetHeader("From", config.FromEmail)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}
	return m
}

// NoopProvider отбрасывает квитанции. Используется, когда SMTP не настроен.
type NoopProvider struct{}

func (NoopProvider) SendDonationReceipt(ctx context.Context, donation *models.Donation) error {
	logger.CtxDebug(ctx, "SMTP not configured, receipt skipped", "donation_id", donation.ID)
	return nil
}
