package models

import "time"

// AdminSession - серверная часть cookie админки. В cookie лежит подписанный
// токен, id которого указывает на эту строку.
type AdminSession struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	AdminUserID uint      `gorm:"not null;index"`
	AdminUser   AdminUser `gorm:"foreignKey:AdminUserID;constraint:OnDelete:CASCADE"`
	ExpiresAt   time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;default:now()"`
}

func (AdminSession) TableName() string {
	return "admin_sessions"
}

func (s *AdminSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
