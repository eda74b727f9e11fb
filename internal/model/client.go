package model

import (
	"time"

	"gorm.io/gorm"
)

// Client is a company's customer record. Tenant-owned: CompanyID is stamped
// on create and filtered on read by the tenancy plugin.
type Client struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	Phone     string         `json:"phone" gorm:"type:varchar(20)"`
	Notes     string         `json:"notes" gorm:"type:text"`
	CompanyID uint           `json:"company_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
