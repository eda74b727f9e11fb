package model

import (
	"time"

	"gorm.io/gorm"
)

// Company is the tenant boundary. Every tenant-owned record carries its ID
// as a foreign key and the tenancy plugin confines reads and writes to it.
//
// Active is a soft-deactivation flag: inactive companies disappear from
// normal listings but keep their data and can be restored. Hard removal is
// a separate administrative delete.
type Company struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Document  string         `json:"document" gorm:"type:varchar(20)"`
	Phone     string         `json:"phone" gorm:"type:varchar(20)"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:CompanyID"`
}
