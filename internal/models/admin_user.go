package models

// AdminUser - аккаунт с доступом в админку.
type AdminUser struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
