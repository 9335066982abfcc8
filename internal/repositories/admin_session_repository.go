package repositories

import (
	"errors"
	"time"

	"donation_backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrSessionNotFound возвращается, когда сессия не найдена в БД
	ErrSessionNotFound = errors.New("admin session not found")
)

// AdminSessionRepository определяет операции с серверными сессиями админки
type AdminSessionRepository interface {
	Create(db *gorm.DB, session *models.AdminSession) error

	FindByID(db *gorm.DB, id string) (*models.AdminSession, error)

	// DeleteByID удаляет одну сессию (logout)
	DeleteByID(db *gorm.DB, id string) error

	// DeleteExpired удаляет все сессии, истекшие к моменту now
	DeleteExpired(db *gorm.DB, now time.Time) (int64, error)
}

type adminSessionRepository struct{}

func NewAdminSessionRepository() AdminSessionRepository {
	return &adminSessionRepository{}
}

func (r *adminSessionRepository) Create(db *gorm.DB, session *models.AdminSession) error {
	return db.Omit("AdminUser").Create(session).Error
}

func (r *adminSessionRepository) FindByID(db *gorm.DB, id string) (*models.AdminSession, error) {
	var session models.AdminSession
	if err := db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *adminSessionRepository) DeleteByID(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.AdminSession{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *adminSessionRepository) DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("expires_at <= ?", now).Delete(&models.AdminSession{})
	return result.RowsAffected, result.Error
}
