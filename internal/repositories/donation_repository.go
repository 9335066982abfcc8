package repositories

import (
	"errors"

	"donation_backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrDonationNotFound возвращается, когда нет записи с таким payment intent id
	ErrDonationNotFound = errors.New("donation not found")
	// ErrDuplicatePaymentIntent - запись для этого payment intent уже существует
	ErrDuplicatePaymentIntent = errors.New("donation for payment intent already exists")
)

// DonationRepository - хранилище записей о пожертвованиях
type DonationRepository interface {
	// Create сохраняет новую запись; ID и CreatedAt заполняются базой
	Create(db *gorm.DB, donation *models.Donation) error

	// FindByPaymentIntentID находит запись по id платежа у процессора
	FindByPaymentIntentID(db *gorm.DB, paymentIntentID string) (*models.Donation, error)

	// FindAll возвращает все записи, новые первыми
	FindAll(db *gorm.DB) ([]models.Donation, error)

	// UpdateStatus перезаписывает статус без проверки предыдущего значения
	UpdateStatus(db *gorm.DB, paymentIntentID string, status models.PaymentStatus) error
}

type donationRepository struct{}

func NewDonationRepository() DonationRepository {
	return &donationRepository{}
}

func (r *donationRepository) Create(db *gorm.DB, donation *models.Donation) error {
	if err := db.Create(donation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePaymentIntent
		}
		return err
	}
	return nil
}

func (r *donationRepository) FindByPaymentIntentID(db *gorm.DB, paymentIntentID string) (*models.Donation, error) {
	var donation models.Donation
	if err := db.Where("payment_intent_id = ?", paymentIntentID).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) FindAll(db *gorm.DB) ([]models.Donation, error) {
	donations := make([]models.Donation, 0)
	err := db.Order("created_at DESC").Order("id DESC").Find(&donations).Error
	return donations, err
}

func (r *donationRepository) UpdateStatus(db *gorm.DB, paymentIntentID string, status models.PaymentStatus) error {
	result := db.Model(&models.Donation{}).
		Where("payment_intent_id = ?", paymentIntentID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDonationNotFound
	}
	return nil
}
