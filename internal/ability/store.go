package ability

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"agendia/internal/model"
)

// GormStore implements Store over the application database. Membership and
// profile tables are global reference data, not tenant-owned, so these
// queries run before (and independent of) tenant resolution.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) MembershipProfile(ctx context.Context, userID, companyID uint) (uint, bool, error) {
	var m model.Membership
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND company_id = ? AND active = ?", userID, companyID, true).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return m.ProfileID, true, nil
}

func (s *GormStore) ProfileAbilities(ctx context.Context, profileID uint) ([]Record, error) {
	var p model.Profile
	err := s.db.WithContext(ctx).
		Preload("Abilities", "active = ?", true).
		First(&p, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		records = append(records, Record{
			ID:          a.ID,
			Name:        a.Name,
			Category:    a.Category,
			Action:      a.Action,
			DisplayName: a.DisplayName,
			Description: a.Description,
		})
	}
	return records, nil
}
