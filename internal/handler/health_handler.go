package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agendia/pkg/database"
)

// Health reports liveness and database reachability.
func Health(c echo.Context) error {
	status := echo.Map{"status": "ok"}

	sqlDB, err := database.GetDB().DB()
	if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	status["database"] = "ok"

	return c.JSON(http.StatusOK, status)
}
