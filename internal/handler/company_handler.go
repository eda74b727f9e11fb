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

// ListCompanies returns the active companies the current user belongs to.
func ListCompanies(c echo.Context) error {
	log := logger.FromEcho(c)
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var companies []model.Company
	result := database.GetDB().
		Joins("JOIN memberships ON memberships.company_id = companies.id AND memberships.deleted_at IS NULL").
		Where("memberships.user_id = ? AND memberships.active = ? AND companies.active = ?", userID, true, true).
		Find(&companies)
	if result.Error != nil {
		log.Error("Failed to list companies", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve companies"})
	}

	return c.JSON(http.StatusOK, companies)
}

// ListAllCompanies is the administrative listing: every company, including
// soft-deactivated ones unless include_inactive=false.
func ListAllCompanies(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB()
	if include := c.QueryParam("include_inactive"); include != "" {
		if v, err := strconv.ParseBool(include); err == nil && !v {
			query = query.Where("active = ?", true)
		}
	}

	var companies []model.Company
	if result := query.Find(&companies); result.Error != nil {
		log.Error("Failed to list all companies", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve companies"})
	}

	return c.JSON(http.StatusOK, companies)
}

// memberOfCompany reports whether userID holds an active membership in
// the target company. The gate only proves the ability in the caller's
// own active company, so every handler taking a company `:id` must make
// this check before touching the target.
func memberOfCompany(userID uint, companyID uint64) bool {
	var membership model.Membership
	err := database.GetDB().
		Where("user_id = ? AND company_id = ? AND active = ?", userID, companyID, true).
		First(&membership).Error
	return err == nil
}

// GetCompany returns one company the current user belongs to.
func GetCompany(c echo.Context) error {
	log := logger.FromEcho(c)
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	if !memberOfCompany(userID, id) {
		log.Warn("Unauthorized company access attempt",
			zap.Uint("user_id", userID),
			zap.Uint64("company_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var company model.Company
	if result := database.GetDB().First(&company, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	return c.JSON(http.StatusOK, company)
}

// CreateCompany creates an additional company owned by the current user,
// attaching them with the admin profile.
func CreateCompany(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("create")

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name     string `json:"name"`
		Document string `json:"document"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	var adminProfile model.Profile
	if result := database.GetDB().Where("name = ?", "admin").First(&adminProfile); result.Error != nil {
		log.Error("Admin profile not seeded", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company creation unavailable"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tx := database.GetDB().Begin()
	if tx.Error != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	company := model.Company{Name: req.Name, Document: req.Document, Phone: req.Phone, Active: true}
	if result := tx.Create(&company); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create company", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company creation failed"})
	}

	// First membership anywhere becomes the user's main company.
	var existing int64
	tx.Model(&model.Membership{}).Where("user_id = ? AND active = ?", userID, true).Count(&existing)

	membership := model.Membership{
		UserID:      userID,
		CompanyID:   company.ID,
		ProfileID:   adminProfile.ID,
		MainCompany: existing == 0,
		Active:      true,
	}
	if result := tx.Create(&membership); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create membership", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "membership creation failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit company creation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company creation failed"})
	}

	log.Info("Company created",
		zap.Uint("company_id", company.ID),
		zap.Uint("owner_id", userID))

	return c.JSON(http.StatusCreated, company)
}

// UpdateCompany updates a company's editable fields. Only members of the
// target company may update it.
func UpdateCompany(c echo.Context) error {
	log := logger.FromEcho(c)
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company ID"})
	}

	if !memberOfCompany(userID, id) {
		log.Warn("Unauthorized company update attempt",
			zap.Uint("user_id", userID),
			zap.Uint64("company_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	var req struct {
		Name     string `json:"name"`
		Document string `json:"document"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var company model.Company
	if result := database.GetDB().First(&company, id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Document != "" {
		updates["document"] = req.Document
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if len(updates) > 0 {
		if err := database.GetDB().Model(&company).Updates(updates).Error; err != nil {
			log.Error("Failed to update company", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}

	return c.JSON(http.StatusOK, company)
}

// DeactivateCompany soft-deactivates a company: it drops out of normal
// listings but keeps its data and can be restored.
func DeactivateCompany(c echo.Context) error {
	return setCompanyActive(c, false, "deactivate")
}

// RestoreCompany reactivates a deactivated company.
func RestoreCompany(c echo.Context) error {
	return setCompanyActive(c, true, "restore")
}

func setCompanyActive(c echo.Context, active bool, operation string) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation(operation)

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company ID"})
	}

	if !memberOfCompany(userID, id) {
		log.Warn("Unauthorized company state change attempt",
			zap.Uint("user_id", userID),
			zap.Uint64("company_id", id),
			zap.String("operation", operation))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	result := database.GetDB().Model(&model.Company{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		log.Error("Failed to change company state", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	log.Info("Company state changed",
		zap.Uint64("company_id", id),
		zap.Bool("active", active))

	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": active})
}

// DeleteCompany hard-deletes a company the caller belongs to. Unlike
// deactivation this is irreversible.
func DeleteCompany(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("delete")

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid company ID"})
	}

	if !memberOfCompany(userID, id) {
		log.Warn("Unauthorized company delete attempt",
			zap.Uint("user_id", userID),
			zap.Uint64("company_id", id))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().Unscoped().Delete(&model.Company{}, id)
	if result.Error != nil {
		log.Error("Failed to delete company", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	log.Info("Company hard-deleted", zap.Uint64("company_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "company deleted"})
}
