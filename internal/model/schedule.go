package model

import (
	"time"

	"gorm.io/gorm"
)

// Schedule is a recurring availability window for a service (weekday plus
// opening hours). Tenant-owned.
type Schedule struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ServiceID uint           `json:"service_id" gorm:"index;not null"`
	Weekday   int            `json:"weekday" gorm:"not null"` // 0=Sunday .. 6=Saturday
	StartTime string         `json:"start_time" gorm:"type:varchar(5);not null"`
	EndTime   string         `json:"end_time" gorm:"type:varchar(5);not null"`
	CompanyID uint           `json:"company_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Service Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

// ScheduleBlock closes a schedule on a specific date (holiday, maintenance).
// Tenant-owned.
type ScheduleBlock struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ScheduleID uint           `json:"schedule_id" gorm:"index;not null"`
	Date       time.Time      `json:"date" gorm:"type:date;not null"`
	Reason     string         `json:"reason" gorm:"type:varchar(255)"`
	CompanyID  uint           `json:"company_id" gorm:"index;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Schedule Schedule `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`
}
