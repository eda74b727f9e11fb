package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"agendia/internal/model"
	"agendia/pkg/database"
	"agendia/pkg/logger"
	"agendia/prometheus"
)

// ListMemberships returns the members of the active company with their
// profiles.
func ListMemberships(c echo.Context) error {
	log := logger.FromEcho(c)
	companyID, ok := currentCompanyID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no active company context"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var memberships []model.Membership
	result := database.GetDB().
		Preload("User").Preload("Profile").
		Where("company_id = ?", companyID).
		Find(&memberships)
	if result.Error != nil {
		log.Error("Failed to list memberships", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve members"})
	}

	return c.JSON(http.StatusOK, memberships)
}

// AttachUser associates a user to the active company with a profile. If
// the user is already a member their profile is updated in place, keeping
// one profile per user per company.
func AttachUser(c echo.Context) error {
	log := logger.FromEcho(c)
	companyID, ok := currentCompanyID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no active company context"})
	}

	var req struct {
		UserEmail string `json:"user_email"`
		ProfileID uint   `json:"profile_id"`
	}
	if err := c.Bind(&req); err != nil || req.UserEmail == "" || req.ProfileID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_email and profile_id are required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var profile model.Profile
	if result := database.GetDB().First(&profile, req.ProfileID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	var user model.User
	if result := database.GetDB().Where("email = ?", req.UserEmail).First(&user); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var existing model.Membership
	result := database.GetDB().Where("user_id = ? AND company_id = ?", user.ID, companyID).First(&existing)
	if result.Error == nil {
		if existing.ProfileID != req.ProfileID || !existing.Active {
			existing.ProfileID = req.ProfileID
			existing.Active = true
			if err := database.GetDB().Save(&existing).Error; err != nil {
				log.Error("Failed to update membership", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update membership"})
			}
			abilityResolver.Invalidate(c.Request().Context(), user.ID, companyID)
			log.Info("Membership profile updated",
				zap.Uint("user_id", user.ID),
				zap.Uint("company_id", companyID),
				zap.Uint("profile_id", req.ProfileID))
		}
		return c.JSON(http.StatusOK, existing)
	}

	// First membership anywhere becomes the user's main company.
	var existingCount int64
	database.GetDB().Model(&model.Membership{}).Where("user_id = ? AND active = ?", user.ID, true).Count(&existingCount)

	membership := model.Membership{
		UserID:      user.ID,
		CompanyID:   companyID,
		ProfileID:   req.ProfileID,
		MainCompany: existingCount == 0,
		Active:      true,
	}
	if err := database.GetDB().Create(&membership).Error; err != nil {
		log.Error("Failed to attach user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to attach user"})
	}

	abilityResolver.Invalidate(c.Request().Context(), user.ID, companyID)
	log.Info("User attached to company",
		zap.Uint("user_id", user.ID),
		zap.Uint("company_id", companyID),
		zap.Uint("profile_id", req.ProfileID))

	return c.JSON(http.StatusCreated, membership)
}

// DetachUser removes a user from the active company.
func DetachUser(c echo.Context) error {
	log := logger.FromEcho(c)
	companyID, ok := currentCompanyID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no active company context"})
	}

	targetUserID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().
		Where("user_id = ? AND company_id = ?", targetUserID, companyID).
		Delete(&model.Membership{})
	if result.Error != nil {
		log.Error("Failed to detach user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to detach user"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user is not a member of this company"})
	}

	abilityResolver.Invalidate(c.Request().Context(), uint(targetUserID), companyID)
	log.Info("User detached from company",
		zap.Uint64("user_id", targetUserID),
		zap.Uint("company_id", companyID))

	return c.JSON(http.StatusOK, echo.Map{"message": "user detached"})
}

// SetMainCompany flags one of the current user's memberships as the main
// company, unsetting any other in the same transaction so at most one main
// company exists per user.
func SetMainCompany(c echo.Context) error {
	log := logger.FromEcho(c)
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		CompanyID uint `json:"company_id"`
	}
	if err := c.Bind(&req); err != nil || req.CompanyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_id is required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var membership model.Membership
	result := tx.Where("user_id = ? AND company_id = ? AND active = ?", userID, req.CompanyID, true).First(&membership)
	if result.Error != nil {
		tx.Rollback()
		log.Warn("Main company set attempt without membership",
			zap.Uint("user_id", userID),
			zap.Uint("company_id", req.CompanyID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the requested company"})
	}

	if err := tx.Model(&model.Membership{}).Where("user_id = ?", userID).Update("main_company", false).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to unset main companies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to set main company"})
	}

	membership.MainCompany = true
	if err := tx.Save(&membership).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to set main company", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to set main company"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit main company change", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to set main company"})
	}

	log.Info("Main company set",
		zap.Uint("user_id", userID),
		zap.Uint("company_id", req.CompanyID))

	return c.JSON(http.StatusOK, echo.Map{"company_id": req.CompanyID, "main_company": true})
}
