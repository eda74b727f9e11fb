package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"agendia/internal/model"
	"agendia/pkg/database"
	"agendia/pkg/logger"
	"agendia/prometheus"
)

// ListAbilities returns the seeded ability reference data.
func ListAbilities(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	var abilities []model.Ability
	if result := database.GetDB().Order("category, action").Find(&abilities); result.Error != nil {
		log.Error("Failed to list abilities", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve abilities"})
	}

	return c.JSON(http.StatusOK, abilities)
}

// MyAbilities returns the current user's granted abilities in the active
// company, grouped by category for permission-aware UI rendering.
func MyAbilities(c echo.Context) error {
	log := logger.FromEcho(c)

	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	companyID, ok := currentCompanyID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no active company context"})
	}

	grouped, err := abilityResolver.Grouped(c.Request().Context(), userID, companyID)
	if err != nil {
		log.Error("Failed to resolve abilities",
			zap.Uint("user_id", userID),
			zap.Uint("company_id", companyID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve abilities"})
	}

	return c.JSON(http.StatusOK, grouped)
}
