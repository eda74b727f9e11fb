package model

import (
	"time"

	"gorm.io/gorm"
)

// Profile is a named bundle of abilities (a role). Profiles are global
// reference data shared by all companies; what varies per company is which
// profile a user holds there, carried by Membership.
type Profile struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	DisplayName string         `json:"display_name" gorm:"type:varchar(100)"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Abilities []Ability `json:"abilities,omitempty" gorm:"many2many:profile_abilities"`
}
