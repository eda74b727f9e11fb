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

// ClientRequest defines the payload for client creation/update.
type ClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// ListClients returns the active company's clients. The tenancy plugin
// scopes the query; no company filter appears here.
func ListClients(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().WithContext(c.Request().Context())
	if name := c.QueryParam("name"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}

	var clients []model.Client
	if result := query.Order("name").Find(&clients); result.Error != nil {
		log.Error("Failed to list clients", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve clients"})
	}

	return c.JSON(http.StatusOK, clients)
}

// GetClient returns one client. A client of another company is simply not
// found, because the scoped query never sees it.
func GetClient(c echo.Context) error {
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var client model.Client
	result := database.GetDB().WithContext(c.Request().Context()).First(&client, "id = ?", id)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	return c.JSON(http.StatusOK, client)
}

// CreateClient creates a client for the active company. CompanyID is
// stamped by the tenancy plugin inside the same INSERT.
func CreateClient(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ClientRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	client := model.Client{Name: req.Name, Email: req.Email, Phone: req.Phone, Notes: req.Notes}
	if err := database.GetDB().WithContext(c.Request().Context()).Create(&client).Error; err != nil {
		log.Error("Failed to create client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "client creation failed"})
	}

	log.Info("Client created", zap.Uint("client_id", client.ID))
	return c.JSON(http.StatusCreated, client)
}

// UpdateClient updates a client of the active company.
func UpdateClient(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var client model.Client
	db := database.GetDB().WithContext(c.Request().Context())
	if result := db.First(&client, "id = ?", id); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	client.Name = req.Name
	client.Email = req.Email
	client.Phone = req.Phone
	client.Notes = req.Notes
	if err := db.Save(&client).Error; err != nil {
		log.Error("Failed to update client", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, client)
}

// DeleteClient soft-deletes a client of the active company.
func DeleteClient(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().WithContext(c.Request().Context()).Delete(&model.Client{}, "id = ?", id)
	if result.Error != nil {
		log.Error("Failed to delete client", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "client deleted"})
}
