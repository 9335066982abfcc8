package dto

import (
	"time"

	"donation_backend/internal/models"
)

// AdminCredentialsRequest - тело register, login и create-user
type AdminCredentialsRequest struct {
	Username string `json:"username" validate:"required,not-blank,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type SetupStatusResponse struct {
	Setup bool `json:"setup"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DonationListResponse struct {
	Donations []models.Donation `json:"donations"`
}

// SessionToken - подписанное значение cookie и срок его действия
type SessionToken struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// SessionIdentity - кому принадлежит найденная сессия
type SessionIdentity struct {
	AdminID   uint
	SessionID string
}
