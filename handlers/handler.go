package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	db *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// HealthCheck reports service and database liveness
func (h *Handler) HealthCheck(c echo.Context) error {
	status := "ok"
	if err := h.db.Ping(); err != nil {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC(),
	})
}
