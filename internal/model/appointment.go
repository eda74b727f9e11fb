package model

import (
	"time"

	"gorm.io/gorm"
)

// Appointment statuses. Plain strings; there is no scheduling logic behind
// them, transitions are driven by the client of the API.
const (
	AppointmentScheduled = "scheduled"
	AppointmentConfirmed = "confirmed"
	AppointmentDone      = "done"
	AppointmentCanceled  = "canceled"
)

// Appointment books a client into a schedule slot. Tenant-owned.
type Appointment struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ClientID   uint           `json:"client_id" gorm:"index;not null"`
	ServiceID  uint           `json:"service_id" gorm:"index;not null"`
	ScheduleID uint           `json:"schedule_id" gorm:"index;not null"`
	Date       time.Time      `json:"date" gorm:"type:date;not null"`
	StartTime  string         `json:"start_time" gorm:"type:varchar(5);not null"`
	EndTime    string         `json:"end_time" gorm:"type:varchar(5);not null"`
	Status     string         `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	Notes      string         `json:"notes" gorm:"type:text"`
	CompanyID  uint           `json:"company_id" gorm:"index;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Client   Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Service  Service  `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Schedule Schedule `json:"schedule,omitempty" gorm:"foreignKey:ScheduleID"`
}
