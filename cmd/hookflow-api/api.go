// Package main provides the hookflow API server.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/hookflow/hookflow/pkg/automation"
	"github.com/hookflow/hookflow/pkg/dispatch"
	"github.com/hookflow/hookflow/pkg/eventbus"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/platforms"
	"github.com/hookflow/hookflow/pkg/retry"
	"github.com/hookflow/hookflow/pkg/web"
	"github.com/hookflow/hookflow/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *platforms.Registry
	eventBus    eventbus.EventBus

	retryQueue *retry.Queue
	sweeper    *workflow.HistorySweeper
	handlers   *web.APIHandlers
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	registry *platforms.Registry,
	eventBus eventbus.EventBus,
) *API {
	executor := dispatch.NewExecutor(logger)
	retryQueue := retry.NewQueue(logger, executor, eventBus)

	tester := platforms.NewHTTPTester(logger)
	manager := automation.NewManager(logger, store, tester)
	dispatcher := automation.NewDispatcher(logger, store, executor, retryQueue, eventBus)
	repository := workflow.NewRepository(logger, store)
	engine := workflow.NewEngine(logger, store, registry, eventBus)
	sweeper := workflow.NewHistorySweeper(logger, store)

	return &API{
		logger:      logger,
		persistence: store,
		registry:    registry,
		eventBus:    eventBus,
		retryQueue:  retryQueue,
		sweeper:     sweeper,
		handlers:    web.NewAPIHandlers(manager, dispatcher, repository, engine, registry, store),
	}
}

func (a *API) App() *fiber.App {
	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Hookflow API")
	})

	au := app.Group("/automations")
	au.Get("/", a.handlers.GetAutomations)
	au.Post("/", a.handlers.RegisterAutomation)
	au.Get("/:id", a.handlers.GetAutomation)
	au.Patch("/:id", a.handlers.UpdateAutomation)
	au.Delete("/:id", a.handlers.RemoveAutomation)

	app.Post("/events", a.handlers.TriggerEvent)

	w := app.Group("/workflows")
	w.Get("/", a.handlers.GetWorkflows)
	w.Post("/", a.handlers.CreateWorkflow)
	w.Get("/:id", a.handlers.GetWorkflow)
	w.Put("/:id", a.handlers.UpdateWorkflow)
	w.Delete("/:id", a.handlers.DeleteWorkflow)
	w.Post("/:id/executions", a.handlers.ExecuteWorkflow)

	e := app.Group("/executions")
	e.Get("/", a.handlers.GetExecutions)
	e.Get("/stats", a.handlers.GetExecutionStats)
	e.Get("/:id", a.handlers.GetExecution)
	e.Post("/:id/cancel", a.handlers.CancelExecution)

	p := app.Group("/platforms")
	p.Get("/", a.handlers.GetPlatforms)
	p.Get("/:id", a.handlers.GetPlatform)
	p.Put("/:id/auth", a.handlers.ConfigurePlatform)

	app.Get("/health", a.handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int) error {
	if err := a.retryQueue.Start(ctx); err != nil {
		return err
	}

	if err := a.sweeper.Start(ctx); err != nil {
		return err
	}

	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

func (a *API) Stop() {
	a.retryQueue.Stop()
	a.sweeper.Stop()
}
