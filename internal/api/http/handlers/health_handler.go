package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-bridge/internal/config"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	cfg         *config.Config
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, cfg *config.Config) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, cfg: cfg}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking required configuration.
// The service holds no connections of its own, so readiness is about
// whether outbound calls can possibly succeed.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	depStatus := fiber.Map{}
	ready := true

	if h.cfg.Oet.EndpointURL == "" {
		depStatus["oet_endpoint"] = "OET_WSDL_URL not set"
		ready = false
	} else {
		depStatus["oet_endpoint"] = "ok"
	}

	if h.cfg.Oet.Username == "" || h.cfg.Oet.Password == "" {
		depStatus["oet_credentials"] = "OET_USER or OET_PASSWORD not set"
		ready = false
	} else {
		depStatus["oet_credentials"] = "ok"
	}

	if h.cfg.Chatwoot.BaseURL == "" || h.cfg.Chatwoot.Token == "" {
		// attachment collection degrades gracefully, report but stay ready
		depStatus["chatwoot"] = "not configured, attachments disabled"
	} else {
		depStatus["chatwoot"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "required configuration missing",
			"details": depStatus,
		},
	})
}
