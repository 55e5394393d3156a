// Package workflow stores workflow definitions and drives their step
// graphs through an execution state machine.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// Repository owns the workflow definition lifecycle. Definitions are
// fully validated at creation time, including step edges and per-kind
// config schemas, so execution never has to handle a malformed graph.
type Repository struct {
	logger *slog.Logger
	store  persistence.Persistence
}

func NewRepository(logger *slog.Logger, store persistence.Persistence) *Repository {
	return &Repository{
		logger: logger.With("module", "workflow"),
		store:  store,
	}
}

// Create validates and persists a new workflow definition, returning its
// assigned id.
func (r *Repository) Create(ctx context.Context, definition *models.WorkflowDefinition) (string, error) {
	workflow := definition.Clone()

	if err := validateDefinition(workflow); err != nil {
		return "", err
	}

	workflow.ID = uuid.New().String()

	now := time.Now().UTC()
	workflow.Metadata.CreatedAt = now
	workflow.Metadata.UpdatedAt = now
	workflow.Metadata.Version = 1

	if err := r.store.SaveWorkflow(ctx, workflow); err != nil {
		return "", fmt.Errorf("failed to persist workflow: %w", err)
	}

	r.logger.InfoContext(ctx, "Workflow created",
		"workflow_id", workflow.ID,
		"steps", len(workflow.Steps),
	)

	return workflow.ID, nil
}

// Update replaces a workflow definition by id, re-validating it and
// bumping the version.
func (r *Repository) Update(ctx context.Context, id string, definition *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	current, err := r.store.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := definition.Clone()
	updated.ID = id

	if err := validateDefinition(updated); err != nil {
		return nil, err
	}

	updated.Metadata.CreatedAt = current.Metadata.CreatedAt
	updated.Metadata.UpdatedAt = time.Now().UTC()
	updated.Metadata.Version = current.Metadata.Version + 1

	if err := r.store.SaveWorkflow(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist workflow: %w", err)
	}

	r.logger.InfoContext(ctx, "Workflow updated",
		"workflow_id", id,
		"version", updated.Metadata.Version,
	)

	return updated, nil
}

// Delete removes a workflow definition by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteWorkflow(ctx, id)
}

// Get returns one workflow definition by id.
func (r *Repository) Get(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return r.store.WorkflowByID(ctx, id)
}

// List returns a read-only snapshot of all workflow definitions.
func (r *Repository) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return r.store.Workflows(ctx)
}

func validateDefinition(workflow *models.WorkflowDefinition) error {
	if err := models.ValidateWorkflow(workflow); err != nil {
		return err
	}

	for _, step := range workflow.Steps {
		if err := validateStepConfig(step); err != nil {
			return err
		}
	}

	return nil
}
