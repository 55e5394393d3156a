// Package persistence provides the data storage abstraction for
// automations, workflows and execution records.
package persistence

import (
	"context"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
)

// Persistence is the pluggable storage contract. Implementations must be
// safe for concurrent use and must return defensive copies so that two
// reads without an interleaved mutation observe equal snapshots.
type Persistence interface {
	Automations(ctx context.Context) ([]*models.AutomationConfig, error)
	AutomationByID(ctx context.Context, id string) (*models.AutomationConfig, error)
	SaveAutomation(ctx context.Context, automation *models.AutomationConfig) error
	DeleteAutomation(ctx context.Context, id string) error

	Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error
	DeleteWorkflow(ctx context.Context, id string) error

	Executions(ctx context.Context) ([]*models.ExecutionRecord, error)
	ExecutionByID(ctx context.Context, id string) (*models.ExecutionRecord, error)
	SaveExecution(ctx context.Context, execution *models.ExecutionRecord) error
	DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
