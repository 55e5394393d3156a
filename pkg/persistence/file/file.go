// Package file provides a file-based persistence implementation, one JSON
// document per record.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

const dirPerm = 0o755

// Persistence stores each entity under <root>/<kind>/<id>.json.
type Persistence struct {
	root string
}

// NewPersistence creates a file store rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{root: cleanRoot}
}

func (p *Persistence) dir(kind string) string {
	return filepath.Join(p.root, kind)
}

func (p *Persistence) writeJSON(kind, id string, value any) error {
	dir := p.dir(kind)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}

	return nil
}

func (p *Persistence) readJSON(kind, id string, value any, notFound error) error {
	data, err := os.ReadFile(filepath.Join(p.dir(kind), id+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound
		}

		return fmt.Errorf("failed to read %s %s: %w", kind, id, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return nil
}

func (p *Persistence) listIDs(kind string) ([]string, error) {
	entries, err := os.ReadDir(p.dir(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to list %s directory: %w", kind, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}

	sort.Strings(ids)

	return ids, nil
}

func (p *Persistence) remove(kind, id string, notFound error) error {
	err := os.Remove(filepath.Join(p.dir(kind), id+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound
	}

	return err
}

func (p *Persistence) Automations(_ context.Context) ([]*models.AutomationConfig, error) {
	ids, err := p.listIDs("automations")
	if err != nil {
		return nil, err
	}

	automations := make([]*models.AutomationConfig, 0, len(ids))

	for _, id := range ids {
		automation := &models.AutomationConfig{}
		if err := p.readJSON("automations", id, automation, persistence.ErrAutomationNotFound); err != nil {
			return nil, err
		}

		automations = append(automations, automation)
	}

	return automations, nil
}

func (p *Persistence) AutomationByID(_ context.Context, id string) (*models.AutomationConfig, error) {
	automation := &models.AutomationConfig{}
	if err := p.readJSON("automations", id, automation, persistence.ErrAutomationNotFound); err != nil {
		return nil, err
	}

	return automation, nil
}

func (p *Persistence) SaveAutomation(_ context.Context, automation *models.AutomationConfig) error {
	return p.writeJSON("automations", automation.ID, automation)
}

func (p *Persistence) DeleteAutomation(_ context.Context, id string) error {
	return p.remove("automations", id, persistence.ErrAutomationNotFound)
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.WorkflowDefinition, error) {
	ids, err := p.listIDs("workflows")
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
		workflow := &models.WorkflowDefinition{}
		if err := p.readJSON("workflows", id, workflow, persistence.ErrWorkflowNotFound); err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	workflow := &models.WorkflowDefinition{}
	if err := p.readJSON("workflows", id, workflow, persistence.ErrWorkflowNotFound); err != nil {
		return nil, err
	}

	return workflow, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.WorkflowDefinition) error {
	return p.writeJSON("workflows", workflow.ID, workflow)
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	return p.remove("workflows", id, persistence.ErrWorkflowNotFound)
}

func (p *Persistence) Executions(_ context.Context) ([]*models.ExecutionRecord, error) {
	ids, err := p.listIDs("executions")
	if err != nil {
		return nil, err
	}

	executions := make([]*models.ExecutionRecord, 0, len(ids))

	for _, id := range ids {
		execution := &models.ExecutionRecord{}
		if err := p.readJSON("executions", id, execution, persistence.ErrExecutionNotFound); err != nil {
			return nil, err
		}

		executions = append(executions, execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		if executions[i].StartedAt.Equal(executions[j].StartedAt) {
			return executions[i].ID < executions[j].ID
		}

		return executions[i].StartedAt.Before(executions[j].StartedAt)
	})

	return executions, nil
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.ExecutionRecord, error) {
	execution := &models.ExecutionRecord{}
	if err := p.readJSON("executions", id, execution, persistence.ErrExecutionNotFound); err != nil {
		return nil, err
	}

	return execution, nil
}

func (p *Persistence) SaveExecution(_ context.Context, execution *models.ExecutionRecord) error {
	return p.writeJSON("executions", execution.ID, execution)
}

func (p *Persistence) DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	executions, err := p.Executions(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0

	for _, execution := range executions {
		if execution.StartedAt.Before(cutoff) {
			if err := p.remove("executions", execution.ID, persistence.ErrExecutionNotFound); err != nil {
				return deleted, err
			}

			deleted++
		}
	}

	return deleted, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
