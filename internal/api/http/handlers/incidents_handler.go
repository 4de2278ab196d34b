package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-bridge/internal/api/dto"
	"github.com/spec-kit/incident-bridge/internal/service"
	apperrors "github.com/spec-kit/incident-bridge/pkg/util/errorutil"
)

// IncidentsHandler manages the incident submission endpoint.
type IncidentsHandler struct {
	service *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidentService *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{service: incidentService}
}

// CreateIncident POST /api/v1/integrations/oet/incidents.
func (h *IncidentsHandler) CreateIncident(c *fiber.Ctx) error {
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.service.CreateIncident(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromSubmissionResult(result))
}
