package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/livestore"
	"github.com/nstclasses/tutor-api/utils/response"
)

// HealthHandler reports service health for load balancer probes
type HealthHandler struct {
	store database.Storage
	live  livestore.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store database.Storage, live livestore.Store) *HealthHandler {
	return &HealthHandler{store: store, live: live}
}

// Check handles GET /ping. The live tree is probed with a read; a missing
// key still proves the store answers.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbErr := h.store.HealthCheck()

	_, liveErr := h.live.Read(c.Context(), "health_probe")
	if errors.Is(liveErr, livestore.ErrNotFound) {
		liveErr = nil
	}

	status := fiber.Map{
		"database":  statusString(dbErr),
		"live_tree": statusString(liveErr),
	}

	if dbErr != nil || liveErr != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "Service degraded", "UNHEALTHY")
	}
	return response.Success(c, status)
}

func statusString(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
