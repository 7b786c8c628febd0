package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/brandforge/brandforge/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("session_not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func gone(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(410).
		WithInstance(c.Path()).
		WithType("session_expired").
		WithDetail(detail)

	return c.Status(fiber.StatusGone).JSON(problem)
}

func conflict(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleWorkflowError maps the workflow error taxonomy onto transport
// semantics: unknown sessions are 404, expired ones 410, lost step races and
// exhausted allowances 409, rejected input 400.
func handleWorkflowError(c fiber.Ctx, err error) error {
	switch {
	case workflow.IsSessionNotFound(err):
		return notFound(c, "session not found")

	case workflow.IsSessionExpired(err):
		return gone(c, "session expired")

	case workflow.IsStaleStep(err):
		return conflict(c, "stale_step", err.Error())

	case workflow.IsRegenerationLimitExceeded(err):
		return conflict(c, "regeneration_limit_exceeded", err.Error())

	case workflow.IsValidation(err):
		return badRequest(c, err.Error())

	default:
		return internalError(c, err)
	}
}
