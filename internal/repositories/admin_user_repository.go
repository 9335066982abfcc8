package repositories

import (
	"errors"

	"donation_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAdminUserNotFound = errors.New("admin user not found")
	ErrUsernameTaken     = errors.New("username already taken")
)

// AdminUserRepository - хранилище аккаунтов администраторов
type AdminUserRepository interface {
	Count(db *gorm.DB) (int64, error)
	Create(db *gorm.DB, user *models.AdminUser) error
	FindByUsername(db *gorm.DB, username string) (*models.AdminUser, error)
	FindByID(db *gorm.DB, id uint) (*models.AdminUser, error)
}

type adminUserRepository struct{}

func NewAdminUserRepository() AdminUserRepository {
	return &adminUserRepository{}
}

func (r *adminUserRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.AdminUser{}).Count(&count).Error
	return count, err
}

// Create полагается на уникальный индекс при одновременной регистрации одного логина.
func (r *adminUserRepository) Create(db *gorm.DB, user *models.AdminUser) error {
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *adminUserRepository) FindByUsername(db *gorm.DB, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *adminUserRepository) FindByID(db *gorm.DB, id uint) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
