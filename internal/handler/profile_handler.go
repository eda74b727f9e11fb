package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"agendia/internal/ability"
	"agendia/internal/model"
	"agendia/pkg/database"
	"agendia/pkg/logger"
	"agendia/prometheus"
)

// ListProfiles returns all profiles with their abilities.
func ListProfiles(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var profiles []model.Profile
	if result := database.GetDB().Preload("Abilities").Find(&profiles); result.Error != nil {
		log.Error("Failed to list profiles", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve profiles"})
	}

	return c.JSON(http.StatusOK, profiles)
}

// GetProfile returns one profile with its abilities grouped by category.
func GetProfile(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var profile model.Profile
	if result := database.GetDB().First(&profile, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	grouped, err := abilityResolver.GroupedForProfile(c.Request().Context(), profile.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve abilities"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"profile":   profile,
		"abilities": grouped,
	})
}

// CreateProfile creates a new profile.
func CreateProfile(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	profile := model.Profile{Name: req.Name, DisplayName: req.DisplayName, Description: req.Description}
	if err := database.GetDB().Create(&profile).Error; err != nil {
		log.Error("Failed to create profile", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "profile name already exists"})
	}

	log.Info("Profile created", zap.Uint("profile_id", profile.ID), zap.String("name", profile.Name))
	return c.JSON(http.StatusCreated, profile)
}

// UpdateProfile updates a profile's presentation fields. The machine key
// is immutable once created; route gates reference profiles indirectly
// through abilities, but seeds and clients rely on stable names.
func UpdateProfile(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile ID"})
	}

	var req struct {
		DisplayName string `json:"display_name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var profile model.Profile
	if result := database.GetDB().First(&profile, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	updates := map[string]any{}
	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) > 0 {
		if err := database.GetDB().Model(&profile).Updates(updates).Error; err != nil {
			log.Error("Failed to update profile", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	return c.JSON(http.StatusOK, profile)
}

// DeleteProfile removes a profile that no membership references.
func DeleteProfile(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	var inUse int64
	database.GetDB().Model(&model.Membership{}).Where("profile_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "profile is assigned to members"})
	}

	result := database.GetDB().Delete(&model.Profile{}, id)
	if result.Error != nil {
		log.Error("Failed to delete profile", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "profile deleted"})
}

// SyncProfileAbilities replaces the profile's granted ability set with the
// named ones, as a single replace-the-set operation rather than an incremental
// diff. Unknown names are rejected before anything is written. Cached
// ability sets of every member holding the profile are invalidated.
func SyncProfileAbilities(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile ID"})
	}

	var req struct {
		Abilities []string `json:"abilities"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	for _, name := range req.Abilities {
		if !ability.Known(name) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":   "unknown ability",
				"ability": name,
			})
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var profile model.Profile
	if result := database.GetDB().First(&profile, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	var abilities []model.Ability
	if len(req.Abilities) > 0 {
		if result := database.GetDB().Where("name IN ?", req.Abilities).Find(&abilities); result.Error != nil {
			log.Error("Failed to load abilities", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync failed"})
		}
		if len(abilities) != len(req.Abilities) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "some abilities are not seeded"})
		}
	}

	if err := database.GetDB().Model(&profile).Association("Abilities").Replace(abilities); err != nil {
		log.Error("Failed to sync profile abilities", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync failed"})
	}

	// Drop cached sets for everyone holding this profile.
	var memberships []model.Membership
	if result := database.GetDB().Where("profile_id = ?", profile.ID).Find(&memberships); result.Error == nil {
		for _, m := range memberships {
			abilityResolver.Invalidate(c.Request().Context(), m.UserID, m.CompanyID)
		}
	}

	log.Info("Profile abilities synced",
		zap.Uint("profile_id", profile.ID),
		zap.Int("count", len(abilities)))

	return c.JSON(http.StatusOK, echo.Map{
		"profile_id": profile.ID,
		"abilities":  req.Abilities,
	})
}
