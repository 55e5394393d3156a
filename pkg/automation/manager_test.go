package automation

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/persistence/memory"
	"github.com/hookflow/hookflow/pkg/platforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func acceptAll(context.Context, *models.PlatformDescriptor) error {
	return nil
}

func validConfig() *models.AutomationConfig {
	return &models.AutomationConfig{
		Name:          "notify",
		PlatformID:    models.PlatformGenericWebhook,
		Active:        true,
		TriggerEvents: []string{"message.received"},
		WebhookURL:    "https://example.com/hook",
		TimeoutMs:     5000,
		RetryAttempts: 2,
		RetryDelayMs:  1000,
	}
}

func TestManager_RegisterAssignsIDAndTimestamps(t *testing.T) {
	store := memory.NewPersistence()
	manager := NewManager(testLogger(), store, platforms.TesterFunc(acceptAll))

	id, err := manager.Register(context.Background(), validConfig())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stored, err := store.AutomationByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "notify", stored.Name)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, stored.CreatedAt, stored.UpdatedAt)
}

func TestManager_RegisterInvalidURLPersistsNothing(t *testing.T) {
	store := memory.NewPersistence()
	manager := NewManager(testLogger(), store, platforms.TesterFunc(acceptAll))

	config := validConfig()
	config.WebhookURL = "not a url"

	_, err := manager.Register(context.Background(), config)
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))

	automations, err := store.Automations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, automations)
}

func TestManager_RegisterGenericWebhookSkipsConnectivityTest(t *testing.T) {
	called := false
	tester := platforms.TesterFunc(func(context.Context, *models.PlatformDescriptor) error {
		called = true

		return errors.New("refused")
	})

	manager := NewManager(testLogger(), memory.NewPersistence(), tester)

	_, err := manager.Register(context.Background(), validConfig())
	require.NoError(t, err)
	assert.False(t, called)
}

func TestManager_RegisterFailedConnectivityTestAborts(t *testing.T) {
	tester := platforms.TesterFunc(func(context.Context, *models.PlatformDescriptor) error {
		return errors.New("refused")
	})

	store := memory.NewPersistence()
	manager := NewManager(testLogger(), store, tester)

	config := validConfig()
	config.PlatformID = "crm"

	_, err := manager.Register(context.Background(), config)
	require.Error(t, err)
	assert.True(t, platforms.IsConnectionError(err))

	automations, err := store.Automations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, automations)
}

func TestManager_UpdateEmptyPatchOnlyBumpsUpdatedAt(t *testing.T) {
	store := memory.NewPersistence()
	manager := NewManager(testLogger(), store, platforms.TesterFunc(acceptAll))

	id, err := manager.Register(context.Background(), validConfig())
	require.NoError(t, err)

	before, err := store.AutomationByID(context.Background(), id)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	updated, err := manager.Update(context.Background(), id, &models.AutomationPatch{})
	require.NoError(t, err)

	assert.Equal(t, before.Name, updated.Name)
	assert.Equal(t, before.WebhookURL, updated.WebhookURL)
	assert.Equal(t, before.TriggerEvents, updated.TriggerEvents)
	assert.Equal(t, before.TimeoutMs, updated.TimeoutMs)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
}

func TestManager_UpdateRevalidatesMergedResult(t *testing.T) {
	store := memory.NewPersistence()
	manager := NewManager(testLogger(), store, platforms.TesterFunc(acceptAll))

	id, err := manager.Register(context.Background(), validConfig())
	require.NoError(t, err)

	badTimeout := 50
	_, err = manager.Update(context.Background(), id, &models.AutomationPatch{TimeoutMs: &badTimeout})
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))

	stored, err := store.AutomationByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5000, stored.TimeoutMs)
}

func TestManager_UpdateUnknownIDFails(t *testing.T) {
	manager := NewManager(testLogger(), memory.NewPersistence(), platforms.TesterFunc(acceptAll))

	_, err := manager.Update(context.Background(), "missing", &models.AutomationPatch{})
	require.Error(t, err)
	assert.True(t, persistence.IsAutomationNotFound(err))
}

func TestManager_RemoveUnknownIDFails(t *testing.T) {
	manager := NewManager(testLogger(), memory.NewPersistence(), platforms.TesterFunc(acceptAll))

	err := manager.Remove(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsAutomationNotFound(err))
}
