package model

import (
	"time"

	"gorm.io/gorm"
)

// Membership associates a user with a company and carries the profile that
// user holds there. The composite unique index on (company_id, user_id)
// makes "one profile per user per company" structural: re-attaching with a
// different profile updates the existing row instead of adding one.
//
// MainCompany marks the membership used as the fallback tenant; at most one
// per user is maintained procedurally (see SetMainCompany).
type Membership struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CompanyID   uint           `json:"company_id" gorm:"uniqueIndex:idx_memberships_company_user;not null"`
	UserID      uint           `json:"user_id" gorm:"uniqueIndex:idx_memberships_company_user;index;not null"`
	ProfileID   uint           `json:"profile_id" gorm:"index;not null"`
	MainCompany bool           `json:"main_company" gorm:"default:false"`
	Active      bool           `json:"active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Profile Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}
