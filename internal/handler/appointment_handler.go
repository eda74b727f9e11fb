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

// AppointmentRequest defines the payload for appointment creation.
type AppointmentRequest struct {
	ClientID   uint   `json:"client_id"`
	ServiceID  uint   `json:"service_id"`
	ScheduleID uint   `json:"schedule_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Notes      string `json:"notes"`
}

var validStatuses = map[string]bool{
	model.AppointmentScheduled: true,
	model.AppointmentConfirmed: true,
	model.AppointmentDone:      true,
	model.AppointmentCanceled:  true,
}

// ListAppointments returns the active company's appointments, optionally
// filtered by date or status.
func ListAppointments(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().WithContext(c.Request().Context()).
		Preload("Client").Preload("Service")
	if date := c.QueryParam("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []model.Appointment
	if result := query.Order("date, start_time").Find(&appointments); result.Error != nil {
		log.Error("Failed to list appointments", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve appointments"})
	}

	return c.JSON(http.StatusOK, appointments)
}

// GetAppointment returns one appointment of the active company.
func GetAppointment(c echo.Context) error {
	var appointment model.Appointment
	result := database.GetDB().WithContext(c.Request().Context()).
		Preload("Client").Preload("Service").Preload("Schedule").
		First(&appointment, "id = ?", c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}
	return c.JSON(http.StatusOK, appointment)
}

// CreateAppointment books a client into a schedule slot. Client, service
// and schedule are all looked up under the active scope, so referencing
// another company's records fails as not found.
func CreateAppointment(c echo.Context) error {
	log := logger.FromEcho(c)

	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ClientID == 0 || req.ServiceID == 0 || req.ScheduleID == 0 || req.Date == "" || req.StartTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id, service_id, schedule_id, date and start_time are required"})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	db := database.GetDB().WithContext(c.Request().Context())

	var client model.Client
	if result := db.First(&client, req.ClientID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	var service model.Service
	if result := db.First(&service, req.ServiceID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}
	var schedule model.Schedule
	if result := db.First(&schedule, req.ScheduleID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}

	appointment := model.Appointment{
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		ScheduleID: req.ScheduleID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Status:     model.AppointmentScheduled,
		Notes:      req.Notes,
	}
	if err := db.Create(&appointment).Error; err != nil {
		log.Error("Failed to create appointment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "appointment creation failed"})
	}

	log.Info("Appointment created",
		zap.Uint("appointment_id", appointment.ID),
		zap.Uint("client_id", appointment.ClientID))

	return c.JSON(http.StatusCreated, appointment)
}

// UpdateAppointment changes an appointment's status or notes.
func UpdateAppointment(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Status    string `json:"status"`
		Notes     string `json:"notes"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Status != "" && !validStatuses[req.Status] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var appointment model.Appointment
	db := database.GetDB().WithContext(c.Request().Context())
	if result := db.First(&appointment, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	if req.Status != "" {
		appointment.Status = req.Status
	}
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}
	if req.StartTime != "" {
		appointment.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		appointment.EndTime = req.EndTime
	}

	if err := db.Save(&appointment).Error; err != nil {
		log.Error("Failed to update appointment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment soft-deletes an appointment of the active company.
func DeleteAppointment(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().WithContext(c.Request().Context()).Delete(&model.Appointment{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		log.Error("Failed to delete appointment", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "appointment deleted"})
}
