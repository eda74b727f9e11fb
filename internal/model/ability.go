package model

import (
	"time"

	"gorm.io/gorm"
)

// Ability is a single permission atom. Name is the machine key in the form
// "<category>.<action>" and is what route gates check; Category and Action
// are the split halves, DisplayName is presentation only.
type Ability struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Category    string         `json:"category" gorm:"type:varchar(50);index;not null"`
	Action      string         `json:"action" gorm:"type:varchar(50);not null"`
	DisplayName string         `json:"display_name" gorm:"type:varchar(100)"`
	Description string         `json:"description" gorm:"type:text"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
