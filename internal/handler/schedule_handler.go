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

// ScheduleRequest defines the payload for schedule creation/update.
type ScheduleRequest struct {
	ServiceID uint   `json:"service_id"`
	Weekday   *int   `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ListSchedules returns the active company's schedules.
func ListSchedules(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().WithContext(c.Request().Context()).Preload("Service")
	if serviceID := c.QueryParam("service_id"); serviceID != "" {
		query = query.Where("service_id = ?", serviceID)
	}

	var schedules []model.Schedule
	if result := query.Order("weekday, start_time").Find(&schedules); result.Error != nil {
		log.Error("Failed to list schedules", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve schedules"})
	}

	return c.JSON(http.StatusOK, schedules)
}

// GetSchedule returns one schedule of the active company.
func GetSchedule(c echo.Context) error {
	var schedule model.Schedule
	result := database.GetDB().WithContext(c.Request().Context()).
		Preload("Service").
		First(&schedule, "id = ?", c.Param("id"))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}
	return c.JSON(http.StatusOK, schedule)
}

// CreateSchedule creates an availability window for a service. The service
// must be visible under the same scope, which pins it to the same company.
func CreateSchedule(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ServiceID == 0 || req.Weekday == nil || req.StartTime == "" || req.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service_id, weekday, start_time and end_time are required"})
	}
	if *req.Weekday < 0 || *req.Weekday > 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "weekday must be between 0 and 6"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	db := database.GetDB().WithContext(c.Request().Context())

	var service model.Service
	if result := db.First(&service, req.ServiceID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
	}

	schedule := model.Schedule{
		ServiceID: req.ServiceID,
		Weekday:   *req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := db.Create(&schedule).Error; err != nil {
		log.Error("Failed to create schedule", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule creation failed"})
	}

	log.Info("Schedule created", zap.Uint("schedule_id", schedule.ID))
	return c.JSON(http.StatusCreated, schedule)
}

// UpdateSchedule updates a schedule of the active company.
func UpdateSchedule(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	var schedule model.Schedule
	db := database.GetDB().WithContext(c.Request().Context())
	if result := db.First(&schedule, "id = ?", c.Param("id")); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}

	if req.Weekday != nil {
		if *req.Weekday < 0 || *req.Weekday > 6 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "weekday must be between 0 and 6"})
		}
		schedule.Weekday = *req.Weekday
	}
	if req.StartTime != "" {
		schedule.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		schedule.EndTime = req.EndTime
	}

	if err := db.Save(&schedule).Error; err != nil {
		log.Error("Failed to update schedule", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, schedule)
}

// DeleteSchedule soft-deletes a schedule of the active company.
func DeleteSchedule(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().WithContext(c.Request().Context()).Delete(&model.Schedule{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		log.Error("Failed to delete schedule", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "schedule deleted"})
}

// ListScheduleBlocks returns date blocks for the company's schedules.
func ListScheduleBlocks(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	query := database.GetDB().WithContext(c.Request().Context())
	if scheduleID := c.QueryParam("schedule_id"); scheduleID != "" {
		query = query.Where("schedule_id = ?", scheduleID)
	}

	var blocks []model.ScheduleBlock
	if result := query.Order("date").Find(&blocks); result.Error != nil {
		log.Error("Failed to list schedule blocks", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve schedule blocks"})
	}

	return c.JSON(http.StatusOK, blocks)
}

// CreateScheduleBlock closes a schedule on a date.
func CreateScheduleBlock(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		ScheduleID uint   `json:"schedule_id"`
		Date       string `json:"date"`
		Reason     string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil || req.ScheduleID == 0 || req.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id and date are required"})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	db := database.GetDB().WithContext(c.Request().Context())

	var schedule model.Schedule
	if result := db.First(&schedule, req.ScheduleID); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}

	block := model.ScheduleBlock{ScheduleID: req.ScheduleID, Date: date, Reason: req.Reason}
	if err := db.Create(&block).Error; err != nil {
		log.Error("Failed to create schedule block", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "block creation failed"})
	}

	log.Info("Schedule block created", zap.Uint("block_id", block.ID))
	return c.JSON(http.StatusCreated, block)
}

// DeleteScheduleBlock removes a date block.
func DeleteScheduleBlock(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := database.GetDB().WithContext(c.Request().Context()).Delete(&model.ScheduleBlock{}, "id = ?", c.Param("id"))
	if result.Error != nil {
		log.Error("Failed to delete schedule block", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule block not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "schedule block deleted"})
}
