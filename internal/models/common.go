package models

import "time"

// BaseModel - autoincrement id и время создания
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"createdAt"`
}
