package dto

import (
	"github.com/shopspring/decimal"
)

// CreateDonationRequest - отправка формы пожертвования.
// DonationAmount в основных единицах (доллары), принимает JSON число или строку.
type CreateDonationRequest struct {
	DonationAmount *decimal.Decimal `json:"donationAmount"`
	Email          string           `json:"email" validate:"omitempty,email,max=254"`
	FirstName      string           `json:"firstName" validate:"max=100"`
	LastName       string           `json:"lastName" validate:"max=100"`
	CardName       string           `json:"cardName" validate:"max=200"`
	Country        string           `json:"country" validate:"max=100"`
	PostalCode     string           `json:"postalCode" validate:"max=20"`
}

type CreateDonationResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type WebhookAckResponse struct {
	Received bool `json:"received"`
}
