package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/platforms"
	"github.com/hookflow/hookflow/pkg/workflow"
	"github.com/moogar0880/problems"
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
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleError maps domain errors to RFC 7807 problem responses.
func handleError(c fiber.Ctx, err error) error {
	switch {
	case models.IsValidationError(err):
		return badRequest(c, err.Error())

	case persistence.IsNotFound(err) || platforms.IsPlatformNotFound(err):
		return notFound(c, err.Error())

	case platforms.IsConnectionError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("connection_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case workflow.IsWorkflowInactive(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("workflow_inactive").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
