package email

import (
	"strings"
	"testing"
	"time"

	"donation_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{1235, "12.35"},
		{1000, "10.00"},
		{5, "0.05"},
		{100000, "1000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinorUnits(tt.in))
	}
}

func TestRenderReceipt(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	donation := &models.Donation{
		BaseModel:       models.BaseModel{ID: 7, CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		Amount:          2500,
		Currency:        "usd",
		Email:           "donor@example.com",
		FirstName:       "<Ada>",
		PaymentIntentID: "pi_abc",
	}

	msg, err := tm.RenderReceipt(donation)
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", msg.To)
	assert.Equal(t, receiptSubject, msg.Subject)
	assert.Contains(t, msg.HTMLBody, "25.00 USD")
	assert.Contains(t, msg.HTMLBody, "&lt;Ada&gt;")
	assert.Contains(t, msg.TextBody, "Dear <Ada>,")
	assert.Contains(t, msg.TextBody, "Reference: pi_abc")
	assert.True(t, strings.Contains(msg.TextBody, "2024-03-01"))
}

func TestRenderReceipt_Anonymous(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	msg, err := tm.RenderReceipt(&models.Donation{Amount: 100, Email: "a@b.co", PaymentIntentID: "pi_1"})
	require.NoError(t, err)
	assert.Contains(t, msg.TextBody, "Hello,")
	assert.Contains(t, msg.TextBody, "1.00 USD")
}

func TestSMTPProvider_Validate(t *testing.T) {
	tm, err := NewTemplateManager()
	require.NoError(t, err)

	p := NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "noreply@example.com"}, tm)
	assert.NoError(t, p.Validate())

	p = NewSMTPProvider(&SMTPConfig{Port: 587, FromEmail: "noreply@example.com"}, tm)
	assert.Error(t, p.Validate())

	p = NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 0, FromEmail: "x@y.z"}, tm)
	assert.Error(t, p.Validate())
}
