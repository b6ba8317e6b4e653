package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/velora/backend/pkg/config"
)

// HealthHandler reports storage connectivity
type HealthHandler struct {
	db *config.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *config.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the server and MongoDB connectivity state
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	mongoState := "connected"
	if err := h.db.Ping(c.Request().Context()); err != nil {
		mongoState = "disconnected"
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "Server is running",
		"timestamp": time.Now().Format(time.RFC3339),
		"mongodb":   mongoState,
	})
}
