// Package web provides the HTTP handlers for the branding pipeline API.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/supervisor"
	"github.com/brandforge/brandforge/pkg/workflow"
)

type APIHandlers struct {
	controller  *workflow.Controller
	supervisor  *supervisor.Supervisor
	persistence persistence.Persistence
	validator   *validator.Validate
}

func NewAPIHandlers(
	controller *workflow.Controller,
	supervisor *supervisor.Supervisor,
	persistence persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		controller:  controller,
		supervisor:  supervisor,
		persistence: persistence,
		validator:   validator,
	}
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.controller.CreateSession(c.Context(), req.BusinessInfo())
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.controller.GetState(c.Context(), c.Params("id"))
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) GetStatus(c fiber.Ctx) error {
	view, err := h.supervisor.QueryStatus(c.Context(), c.Params("id"))
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(view)
}

// GetEvents lists the session's workflow event log. Expired sessions keep
// their log readable.
func (h *APIHandlers) GetEvents(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.controller.GetState(c.Context(), id); err != nil && !workflow.IsSessionExpired(err) {
		return handleWorkflowError(c, err)
	}

	events, err := h.persistence.Events().ListBySession(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"events": events})
}

func (h *APIHandlers) RunAnalysis(c fiber.Ctx) error {
	result, err := h.controller.RunAnalysis(c.Context(), c.Params("id"))
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) SuggestNames(c fiber.Ctx) error {
	suggestions, err := h.controller.SuggestNames(c.Context(), c.Params("id"))
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"suggestions":       suggestions,
		"max_regenerations": models.MaxNameRegenerations,
	})
}

func (h *APIHandlers) RegenerateNames(c fiber.Ctx) error {
	suggestions, err := h.controller.RegenerateNames(c.Context(), c.Params("id"))
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"suggestions":       suggestions,
		"max_regenerations": models.MaxNameRegenerations,
	})
}

func (h *APIHandlers) SelectName(c fiber.Ctx) error {
	var req SelectNameRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.controller.SelectName(c.Context(), c.Params("id"), req.Name)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) GenerateSignboards(c fiber.Ctx) error {
	return h.generateImages(c, h.controller.GenerateSignboards,
		func(s *models.Session) *models.ImageSet { return s.Signboards })
}

func (h *APIHandlers) SelectSignboard(c fiber.Ctx) error {
	return h.selectImage(c, h.controller.SelectSignboard)
}

func (h *APIHandlers) GenerateInteriors(c fiber.Ctx) error {
	return h.generateImages(c, h.controller.GenerateInteriors,
		func(s *models.Session) *models.ImageSet { return s.Interiors })
}

func (h *APIHandlers) SelectInterior(c fiber.Ctx) error {
	return h.selectImage(c, h.controller.SelectInterior)
}

func (h *APIHandlers) BuildReport(c fiber.Ctx) error {
	report, err := h.controller.BuildReport(c.Context(), c.Params("id"))
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(report)
}

// Recover asks the supervisor to inspect the session and restart a stuck
// image step if there is one. Healthy sessions come back unchanged.
func (h *APIHandlers) Recover(c fiber.Ctx) error {
	if err := h.supervisor.Observe(c.Context(), c.Params("id")); err != nil {
		return handleWorkflowError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetStats(c fiber.Ctx) error {
	stats, err := h.supervisor.CollectStats(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(stats)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "BrandForge API is healthy"
	httpStatus := http.StatusOK

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "BrandForge API is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

// generateImages runs a fan-out and, when every slot came back as fallback
// content, lets the supervisor retry the step before answering. The client
// gets the final batch either way.
func (h *APIHandlers) generateImages(c fiber.Ctx, generate func(ctx context.Context, sessionID string) (*models.ImageSet, error), fromSession func(*models.Session) *models.ImageSet) error {
	id := c.Params("id")

	set, err := generate(c.Context(), id)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	if set.AllFallback() {
		if err := h.supervisor.Observe(c.Context(), id); err != nil {
			return handleWorkflowError(c, err)
		}

		session, err := h.controller.GetState(c.Context(), id)
		if err != nil {
			return handleWorkflowError(c, err)
		}

		set = fromSession(session)
	}

	return c.JSON(set)
}

func (h *APIHandlers) selectImage(c fiber.Ctx, selectFn func(ctx context.Context, sessionID, url string) (*models.Session, error)) error {
	var req SelectImageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := selectFn(c.Context(), c.Params("id"), req.URL)
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(session)
}
