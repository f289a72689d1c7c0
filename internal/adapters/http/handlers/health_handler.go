package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Check probes one dependency
type Check func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	mode   string
	checks map[string]Check
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mode string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{
		mode:   mode,
		checks: checks,
	}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "CleanOrder API v1.0 is running",
		"mode":    h.mode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API, database and cache health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := fiber.StatusOK
	checks := fiber.Map{"api": "healthy"}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = "unhealthy"
			// the revocation cache degrades to MySQL, so only the database is fatal
			if name == "database" {
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
			continue
		}
		checks[name] = "healthy"
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Description Returns API v1 information
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "CleanOrder API v1.0",
		"version": "1.0.0",
	})
}
