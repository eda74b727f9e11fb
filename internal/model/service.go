package model

import (
	"time"

	"gorm.io/gorm"
)

// Service is something a company offers for booking (a haircut, a
// consultation). Tenant-owned.
type Service struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Name            string         `json:"name" gorm:"type:varchar(100);not null"`
	Description     string         `json:"description" gorm:"type:text"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null;default:30"`
	Price           float64        `json:"price" gorm:"not null;default:0"`
	Active          bool           `json:"active" gorm:"default:true"`
	CompanyID       uint           `json:"company_id" gorm:"index;not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}
