package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/hookflow/hookflow/pkg/automation"
	"github.com/hookflow/hookflow/pkg/dispatch"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence/memory"
	"github.com/hookflow/hookflow/pkg/platforms"
	"github.com/hookflow/hookflow/pkg/web"
	"github.com/hookflow/hookflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupApp(t *testing.T, tester platforms.ConnectivityTester) (*fiber.App, *memory.Persistence) {
	t.Helper()

	store := memory.NewPersistence()
	logger := testLogger()

	if tester == nil {
		tester = platforms.TesterFunc(func(context.Context, *models.PlatformDescriptor) error {
			return nil
		})
	}

	registry := platforms.NewRegistry(logger, tester)
	executor := dispatch.NewExecutor(logger)
	manager := automation.NewManager(logger, store, tester)
	dispatcher := automation.NewDispatcher(logger, store, executor, nil, nil)
	repository := workflow.NewRepository(logger, store)
	engine := workflow.NewEngine(logger, store, registry, nil)

	handlers := web.NewAPIHandlers(manager, dispatcher, repository, engine, registry, store)

	app := fiber.New()

	a := app.Group("/automations")
	a.Get("/", handlers.GetAutomations)
	a.Post("/", handlers.RegisterAutomation)
	a.Get("/:id", handlers.GetAutomation)
	a.Patch("/:id", handlers.UpdateAutomation)
	a.Delete("/:id", handlers.RemoveAutomation)

	app.Post("/events", handlers.TriggerEvent)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/executions", handlers.ExecuteWorkflow)

	e := app.Group("/executions")
	e.Get("/", handlers.GetExecutions)
	e.Get("/stats", handlers.GetExecutionStats)
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/cancel", handlers.CancelExecution)

	p := app.Group("/platforms")
	p.Get("/", handlers.GetPlatforms)
	p.Get("/:id", handlers.GetPlatform)
	p.Put("/:id/auth", handlers.ConfigurePlatform)

	app.Get("/health", handlers.HealthCheck)

	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, responseBody
}

func TestRegisterAutomation(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/automations/", models.AutomationConfig{
		Name:          "notify",
		PlatformID:    models.PlatformGenericWebhook,
		Active:        true,
		TriggerEvents: []string{"message.received"},
		WebhookURL:    "https://example.com/hook",
		TimeoutMs:     5000,
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created web.RegisterAutomationResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
}

func TestRegisterAutomation_ValidationFailure(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/automations/", models.AutomationConfig{
		Name:       "broken",
		PlatformID: models.PlatformGenericWebhook,
		WebhookURL: "https://example.com/hook",
		TimeoutMs:  5000,
		// no trigger events
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetAutomation_NotFound(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, _ := doJSON(t, app, http.MethodGet, "/automations/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTriggerEvent_NoMatches(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/events", web.TriggerEventRequest{
		Kind:    "order.created",
		Payload: map[string]any{"id": "o-1"},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var response web.TriggerEventResponse
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Equal(t, "order.created", response.Kind)
	assert.Empty(t, response.Results)
}

func TestTriggerEvent_MissingKind(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/events", web.TriggerEventRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflow_DanglingEdgeRejected(t *testing.T) {
	app, _ := setupApp(t, nil)

	next := "ghost"
	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/", models.WorkflowDefinition{
		Name:   "broken",
		Active: true,
		Steps: []*models.Step{
			{ID: "a", Name: "a", Kind: models.StepKindAction, OnSuccess: &next},
		},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteWorkflow_InactiveConflict(t *testing.T) {
	app, store := setupApp(t, nil)

	repository := workflow.NewRepository(testLogger(), store)
	id, err := repository.Create(context.Background(), &models.WorkflowDefinition{
		Name:  "dormant",
		Steps: []*models.Step{{ID: "a", Name: "a", Kind: models.StepKindAction}},
	})
	require.NoError(t, err)

	resp, _ := doJSON(t, app, http.MethodPost, "/workflows/"+id+"/executions", web.ExecuteWorkflowRequest{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestConfigurePlatform_ConnectionFailure(t *testing.T) {
	rejectAll := platforms.TesterFunc(func(context.Context, *models.PlatformDescriptor) error {
		return errors.New("refused")
	})

	app, _ := setupApp(t, rejectAll)

	resp, _ := doJSON(t, app, http.MethodPut, "/platforms/chat/auth", web.ConfigurePlatformRequest{
		Auth: models.AuthConfig{Token: "bad"},
	})

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGetPlatforms(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/platforms/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var descriptors []*models.PlatformDescriptor
	require.NoError(t, json.Unmarshal(body, &descriptors))
	assert.Len(t, descriptors, 4)
}

func TestGetExecutionStats(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/executions/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats workflow.ExecutionStats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Zero(t, stats.Total)
}

func TestHealthCheck(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, _ := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
