// Package memory provides the in-process persistence implementation used
// by default and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
)

// Persistence keeps all records in concurrency-safe maps.
type Persistence struct {
	mu          sync.RWMutex
	automations map[string]*models.AutomationConfig
	workflows   map[string]*models.WorkflowDefinition
	executions  map[string]*models.ExecutionRecord
}

// NewPersistence creates an empty in-memory store.
func NewPersistence() *Persistence {
	return &Persistence{
		automations: make(map[string]*models.AutomationConfig),
		workflows:   make(map[string]*models.WorkflowDefinition),
		executions:  make(map[string]*models.ExecutionRecord),
	}
}

func (p *Persistence) Automations(_ context.Context) ([]*models.AutomationConfig, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	automations := make([]*models.AutomationConfig, 0, len(p.automations))
	for _, automation := range p.automations {
		automations = append(automations, automation.Clone())
	}

	sort.Slice(automations, func(i, j int) bool { return automations[i].ID < automations[j].ID })

	return automations, nil
}

func (p *Persistence) AutomationByID(_ context.Context, id string) (*models.AutomationConfig, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	automation, ok := p.automations[id]
	if !ok {
		return nil, persistence.ErrAutomationNotFound
	}

	return automation.Clone(), nil
}

func (p *Persistence) SaveAutomation(_ context.Context, automation *models.AutomationConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.automations[automation.ID] = automation.Clone()

	return nil
}

func (p *Persistence) DeleteAutomation(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.automations[id]; !ok {
		return persistence.ErrAutomationNotFound
	}

	delete(p.automations, id)

	return nil
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.WorkflowDefinition, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	workflows := make([]*models.WorkflowDefinition, 0, len(p.workflows))
	for _, workflow := range p.workflows {
		workflows = append(workflows, workflow.Clone())
	}

	sort.Slice(workflows, func(i, j int) bool { return workflows[i].ID < workflows[j].ID })

	return workflows, nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.WorkflowDefinition, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	workflow, ok := p.workflows[id]
	if !ok {
		return nil, persistence.ErrWorkflowNotFound
	}

	return workflow.Clone(), nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.WorkflowDefinition) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.workflows[workflow.ID] = workflow.Clone()

	return nil
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.workflows[id]; !ok {
		return persistence.ErrWorkflowNotFound
	}

	delete(p.workflows, id)

	return nil
}

func (p *Persistence) Executions(_ context.Context) ([]*models.ExecutionRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	executions := make([]*models.ExecutionRecord, 0, len(p.executions))
	for _, execution := range p.executions {
		executions = append(executions, execution.Clone())
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
	p.mu.RLock()
	defer p.mu.RUnlock()

	execution, ok := p.executions[id]
	if !ok {
		return nil, persistence.ErrExecutionNotFound
	}

	return execution.Clone(), nil
}

func (p *Persistence) SaveExecution(_ context.Context, execution *models.ExecutionRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.executions[execution.ID] = execution.Clone()

	return nil
}

func (p *Persistence) DeleteExecutionsBefore(_ context.Context, cutoff time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	deleted := 0

	for id, execution := range p.executions {
		if execution.StartedAt.Before(cutoff) {
			delete(p.executions, id)

			deleted++
		}
	}

	return deleted, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
