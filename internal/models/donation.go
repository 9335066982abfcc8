package models

// Donation - одна попытка пожертвования, привязанная к одному payment intent.
// Amount хранится в минимальных единицах (центах).
type Donation struct {
	BaseModel
	Amount          int64         `gorm:"not null;check:amount > 0" json:"amount"`
	Currency        string        `gorm:"size:3;not null;default:'usd'" json:"currency"`
	Email           string        `gorm:"not null" json:"email"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	CardName        string        `json:"cardName"`
	Country         string        `json:"country"`
	PostalCode      string        `json:"postalCode"`
	PaymentIntentID string        `gorm:"uniqueIndex;not null" json:"paymentIntentId"`
	Status          PaymentStatus `gorm:"type:varchar(64);not null;default:'pending';index" json:"status"`
}

func (Donation) TableName() string {
	return "donations"
}

func (d *Donation) IsPending() bool {
	return d.Status == PaymentStatusPending
}
