package memory

import (
	"context"
	"testing"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_AutomationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewPersistence()

	automation := &models.AutomationConfig{
		ID:            "auto-1",
		Name:          "notify",
		TriggerEvents: []string{"order.created"},
		WebhookURL:    "https://example.com/hook",
		TimeoutMs:     5000,
	}

	require.NoError(t, store.SaveAutomation(ctx, automation))

	fetched, err := store.AutomationByID(ctx, "auto-1")
	require.NoError(t, err)
	assert.Equal(t, "notify", fetched.Name)

	// Mutating the fetched copy must not leak into the store.
	fetched.Name = "changed"
	again, err := store.AutomationByID(ctx, "auto-1")
	require.NoError(t, err)
	assert.Equal(t, "notify", again.Name)
}

func TestPersistence_NotFoundSentinels(t *testing.T) {
	ctx := context.Background()
	store := NewPersistence()

	_, err := store.AutomationByID(ctx, "missing")
	assert.True(t, persistence.IsAutomationNotFound(err))

	_, err = store.WorkflowByID(ctx, "missing")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	_, err = store.ExecutionByID(ctx, "missing")
	assert.True(t, persistence.IsExecutionNotFound(err))

	assert.Error(t, store.DeleteAutomation(ctx, "missing"))
	assert.Error(t, store.DeleteWorkflow(ctx, "missing"))
}

func TestPersistence_SnapshotsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewPersistence()

	for _, id := range []string{"auto-b", "auto-a", "auto-c"} {
		require.NoError(t, store.SaveAutomation(ctx, &models.AutomationConfig{
			ID:            id,
			Name:          id,
			TriggerEvents: []string{"x"},
			WebhookURL:    "https://example.com",
			TimeoutMs:     5000,
		}))
	}

	first, err := store.Automations(ctx)
	require.NoError(t, err)

	second, err := store.Automations(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPersistence_DeleteExecutionsBefore(t *testing.T) {
	ctx := context.Background()
	store := NewPersistence()
	now := time.Now()

	old := &models.ExecutionRecord{ID: "exec-old", Status: models.ExecutionCompleted, StartedAt: now.Add(-48 * time.Hour)}
	recent := &models.ExecutionRecord{ID: "exec-new", Status: models.ExecutionCompleted, StartedAt: now}

	require.NoError(t, store.SaveExecution(ctx, old))
	require.NoError(t, store.SaveExecution(ctx, recent))

	deleted, err := store.DeleteExecutionsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	remaining, err := store.Executions(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "exec-new", remaining[0].ID)
}
