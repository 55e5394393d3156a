package file

import (
	"context"
	"testing"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_WorkflowRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewPersistence(t.TempDir())

	next := "finish"
	workflow := &models.WorkflowDefinition{
		ID:     "wf-1",
		Name:   "ship order",
		Active: true,
		Steps: []*models.Step{
			{ID: "start", Name: "Start", Kind: models.StepKindAction, PlatformID: "crm", OnSuccess: &next},
			{ID: "finish", Name: "Finish", Kind: models.StepKindDelay, Config: map[string]any{"duration_ms": float64(10)}},
		},
	}

	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	fetched, err := store.WorkflowByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "ship order", fetched.Name)
	require.Len(t, fetched.Steps, 2)
	require.NotNil(t, fetched.Steps[0].OnSuccess)
	assert.Equal(t, "finish", *fetched.Steps[0].OnSuccess)

	require.NoError(t, store.DeleteWorkflow(ctx, "wf-1"))

	_, err = store.WorkflowByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestPersistence_FileURLPrefixStripped(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewPersistence("file://" + dir)

	require.NoError(t, store.SaveAutomation(ctx, &models.AutomationConfig{ID: "auto-1", Name: "n"}))

	fetched, err := store.AutomationByID(ctx, "auto-1")
	require.NoError(t, err)
	assert.Equal(t, "n", fetched.Name)
}

func TestPersistence_ExecutionsSortedAndSwept(t *testing.T) {
	ctx := context.Background()
	store := NewPersistence(t.TempDir())
	now := time.Now()

	require.NoError(t, store.SaveExecution(ctx, &models.ExecutionRecord{
		ID: "exec-b", Status: models.ExecutionCompleted, StartedAt: now,
	}))
	require.NoError(t, store.SaveExecution(ctx, &models.ExecutionRecord{
		ID: "exec-a", Status: models.ExecutionCompleted, StartedAt: now.Add(-2 * time.Hour),
	}))

	executions, err := store.Executions(ctx)
	require.NoError(t, err)
	require.Len(t, executions, 2)
	assert.Equal(t, "exec-a", executions[0].ID)

	deleted, err := store.DeleteExecutionsBefore(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	executions, err = store.Executions(ctx)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, "exec-b", executions[0].ID)
}

func TestPersistence_EmptyStoreLists(t *testing.T) {
	ctx := context.Background()
	store := NewPersistence(t.TempDir())

	automations, err := store.Automations(ctx)
	require.NoError(t, err)
	assert.Empty(t, automations)

	workflows, err := store.Workflows(ctx)
	require.NoError(t, err)
	assert.Empty(t, workflows)
}
