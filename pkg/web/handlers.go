package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/hookflow/hookflow/pkg/automation"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/platforms"
	"github.com/hookflow/hookflow/pkg/workflow"
)

type APIHandlers struct {
	manager    *automation.Manager
	dispatcher *automation.Dispatcher
	repository *workflow.Repository
	engine     *workflow.Engine
	platforms  *platforms.Registry
	store      persistence.Persistence
	validator  *validator.Validate
}

func NewAPIHandlers(
	manager *automation.Manager,
	dispatcher *automation.Dispatcher,
	repository *workflow.Repository,
	engine *workflow.Engine,
	platformRegistry *platforms.Registry,
	store persistence.Persistence,
) *APIHandlers {
	return &APIHandlers{
		manager:    manager,
		dispatcher: dispatcher,
		repository: repository,
		engine:     engine,
		platforms:  platformRegistry,
		store:      store,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Automations

func (h *APIHandlers) GetAutomations(c fiber.Ctx) error {
	automations, err := h.manager.List(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(automations)
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	config, err := h.manager.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(config)
}

func (h *APIHandlers) RegisterAutomation(c fiber.Ctx) error {
	var config models.AutomationConfig
	if err := c.Bind().JSON(&config); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	id, err := h.manager.Register(c.Context(), &config)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterAutomationResponse{ID: id})
}

func (h *APIHandlers) UpdateAutomation(c fiber.Ctx) error {
	var patch models.AutomationPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.manager.Update(c.Context(), c.Params("id"), &patch)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) RemoveAutomation(c fiber.Ctx) error {
	if err := h.manager.Remove(c.Context(), c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Events

func (h *APIHandlers) TriggerEvent(c fiber.Ctx) error {
	var req TriggerEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	results, err := h.dispatcher.TriggerEvent(c.Context(), req.Kind, req.Payload, req.Context)
	if err != nil {
		return handleError(c, err)
	}

	if results == nil {
		results = []*models.ExecutionResult{}
	}

	return c.JSON(TriggerEventResponse{Kind: req.Kind, Results: results})
}

// Workflows

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.repository.List(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	definition, err := h.repository.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(definition)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var definition models.WorkflowDefinition
	if err := c.Bind().JSON(&definition); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	id, err := h.repository.Create(c.Context(), &definition)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var definition models.WorkflowDefinition
	if err := c.Bind().JSON(&definition); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.repository.Update(c.Context(), c.Params("id"), &definition)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.repository.Delete(c.Context(), c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	var req ExecuteWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	executionID, err := h.engine.Execute(c.Context(), c.Params("id"), req.Payload)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(ExecuteWorkflowResponse{ExecutionID: executionID})
}

// Executions

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	executions, err := h.store.Executions(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(executions)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.store.ExecutionByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	if err := h.engine.Cancel(c.Context(), c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetExecutionStats(c fiber.Ctx) error {
	stats, err := workflow.GetExecutionStats(c.Context(), h.store, workflow.DefaultStatsWindow)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(stats)
}

// Platforms

func (h *APIHandlers) GetPlatforms(c fiber.Ctx) error {
	return c.JSON(h.platforms.List())
}

func (h *APIHandlers) GetPlatform(c fiber.Ctx) error {
	descriptor, err := h.platforms.Get(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(descriptor)
}

func (h *APIHandlers) ConfigurePlatform(c fiber.Ctx) error {
	var req ConfigurePlatformRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	descriptor, err := h.platforms.Configure(c.Context(), c.Params("id"), req.Auth)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(descriptor)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if err := h.store.HealthCheck(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
