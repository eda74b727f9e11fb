// Package seed installs the reference data the authorization model needs:
// the ability catalog and the default profiles. Safe to run repeatedly;
// everything is upserted by machine key.
package seed

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agendia/internal/ability"
	"agendia/internal/model"
)

// secretaryAbilities is the day-to-day subset granted to the secretary
// profile: full client and appointment handling, read access to the rest
// of the scheduling data.
var secretaryAbilities = []string{
	"clients.index", "clients.show", "clients.store", "clients.update",
	"appointments.index", "appointments.show", "appointments.store", "appointments.update",
	"services.index", "services.show",
	"schedules.index", "schedules.show",
	"schedule_blocks.index", "schedule_blocks.show",
}

// platformAbilities grant cross-tenant reach. No default profile carries
// them; operators attach them to a dedicated profile per deployment.
var platformAbilities = map[string]bool{
	"companies.index_all": true,
}

// adminAbilities is the full catalog minus the platform-wide entries.
func adminAbilities() []string {
	var names []string
	for _, def := range ability.Catalog() {
		if !platformAbilities[def.Name] {
			names = append(names, def.Name)
		}
	}
	return names
}

// Run seeds abilities and default profiles.
func Run(db *gorm.DB) error {
	if err := seedAbilities(db); err != nil {
		return err
	}
	if err := seedProfile(db, "admin", "Administrator", "Full access to every company operation", adminAbilities()); err != nil {
		return err
	}
	return seedProfile(db, "secretary", "Secretary", "Client and appointment handling", secretaryAbilities)
}

func seedAbilities(db *gorm.DB) error {
	for _, def := range ability.Catalog() {
		a := model.Ability{
			Name:        def.Name,
			Category:    def.Category,
			Action:      def.Action,
			DisplayName: def.DisplayName,
			Description: def.Description,
			Active:      true,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"category", "action", "display_name", "description"}),
		}).Create(&a).Error
		if err != nil {
			return fmt.Errorf("failed to seed ability %q: %w", def.Name, err)
		}
	}
	return nil
}

// seedProfile upserts a profile and replaces its ability set. names == nil
// grants the full catalog.
func seedProfile(db *gorm.DB, name, displayName, description string, names []string) error {
	profile := model.Profile{Name: name, DisplayName: displayName, Description: description}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "description"}),
	}).Create(&profile).Error
	if err != nil {
		return fmt.Errorf("failed to seed profile %q: %w", name, err)
	}
	if profile.ID == 0 {
		if err := db.Where("name = ?", name).First(&profile).Error; err != nil {
			return fmt.Errorf("failed to reload profile %q: %w", name, err)
		}
	}

	var abilities []model.Ability
	query := db.Where("active = ?", true)
	if names != nil {
		query = query.Where("name IN ?", names)
	}
	if err := query.Find(&abilities).Error; err != nil {
		return fmt.Errorf("failed to load abilities for profile %q: %w", name, err)
	}

	if err := db.Model(&profile).Association("Abilities").Replace(abilities); err != nil {
		return fmt.Errorf("failed to attach abilities to profile %q: %w", name, err)
	}
	return nil
}
