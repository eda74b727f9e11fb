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

// ServiceRequest defines the payload for service creation/update.
type ServiceRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Active          *bool   `json:"active"`
}

// ListServices returns the active company's services.
func ListServices(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().WithContext(c.Request().Context())
	if isActive := c.QueryParam("active"); isActive != "" {
		if active, err := strconv.ParseBool(isActive); err == nil {
			query = query.Where("active = ?", active)
		}
	}

	var services []model.Service
	if result := query.Order("name").Find(&services); result.Error != nil {
		log.Error("Failed to list services", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve services"})
	}

	return c.JSON(http.StatusOK, services)
}

// GetService returns one service of the active company.
func GetService(c echo.Context) error {
	var service model.Service
	result := database.GetDB().WithContext(c.Request().Context()).First(&service, "id = ?", c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}
	return c.JSON(http.StatusOK, service)
}

// CreateService creates a service for the active company.
func CreateService(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ServiceRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 30
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	service := model.Service{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          true,
	}
	if err := database.GetDB().WithContext(c.Request().Context()).Create(&service).Error; err != nil {
		log.Error("Failed to create service", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service creation failed"})
	}

	log.Info("Service created", zap.Uint("service_id", service.ID))
	return c.JSON(http.StatusCreated, service)
}

// UpdateService updates a service of the active company.
func UpdateService(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var service model.Service
	db := database.GetDB().WithContext(c.Request().Context())
	if result := db.First(&service, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}

	if req.Name != "" {
		service.Name = req.Name
	}
	if req.Description != "" {
		service.Description = req.Description
	}
	if req.DurationMinutes > 0 {
		service.DurationMinutes = req.DurationMinutes
	}
	if req.Price > 0 {
		service.Price = req.Price
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := db.Save(&service).Error; err != nil {
		log.Error("Failed to update service", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, service)
}

// DeleteService soft-deletes a service of the active company.
func DeleteService(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().WithContext(c.Request().Context()).Delete(&model.Service{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		log.Error("Failed to delete service", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "service deleted"})
}
