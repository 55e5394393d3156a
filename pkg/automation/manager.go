// Package automation manages automation registrations and dispatches
// inbound events to the automations that match them.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/platforms"
)

// Manager owns the automation registration lifecycle. Writes go through
// validation and, for non generic-webhook platforms, a synchronous
// connectivity test.
type Manager struct {
	logger *slog.Logger
	store  persistence.Persistence
	tester platforms.ConnectivityTester
}

func NewManager(logger *slog.Logger, store persistence.Persistence, tester platforms.ConnectivityTester) *Manager {
	return &Manager{
		logger: logger.With("module", "automation"),
		store:  store,
		tester: tester,
	}
}

// Register validates and persists a new automation, returning its
// assigned id. Platforms other than the generic webhook must pass a
// connectivity test against the target URL before the registration is
// accepted.
func (m *Manager) Register(ctx context.Context, config *models.AutomationConfig) (string, error) {
	automation := config.Clone()

	if err := models.ValidateAutomation(automation); err != nil {
		return "", err
	}

	if err := m.testConnectivity(ctx, automation); err != nil {
		return "", err
	}

	automation.ID = uuid.New().String()

	now := time.Now().UTC()
	automation.CreatedAt = now
	automation.UpdatedAt = now

	if err := m.store.SaveAutomation(ctx, automation); err != nil {
		return "", fmt.Errorf("failed to persist automation: %w", err)
	}

	m.logger.InfoContext(ctx, "Automation registered",
		"automation_id", automation.ID,
		"platform_id", automation.PlatformID,
		"trigger_events", automation.TriggerEvents,
	)

	return automation.ID, nil
}

// Update applies a partial patch to an existing automation. The merged
// result is re-validated before it is stored; a failing validation
// leaves the stored automation unchanged.
func (m *Manager) Update(ctx context.Context, id string, patch *models.AutomationPatch) (*models.AutomationConfig, error) {
	current, err := m.store.AutomationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	patch.Apply(updated)

	if err := models.ValidateAutomation(updated); err != nil {
		return nil, err
	}

	if patchTouchesTarget(patch) {
		if err := m.testConnectivity(ctx, updated); err != nil {
			return nil, err
		}
	}

	updated.UpdatedAt = time.Now().UTC()

	if err := m.store.SaveAutomation(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to persist automation: %w", err)
	}

	m.logger.InfoContext(ctx, "Automation updated", "automation_id", id)

	return updated, nil
}

// Remove deletes an automation by id.
func (m *Manager) Remove(ctx context.Context, id string) error {
	if err := m.store.DeleteAutomation(ctx, id); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Automation removed", "automation_id", id)

	return nil
}

// Get returns one automation by id.
func (m *Manager) Get(ctx context.Context, id string) (*models.AutomationConfig, error) {
	return m.store.AutomationByID(ctx, id)
}

// List returns a read-only snapshot of all automations.
func (m *Manager) List(ctx context.Context) ([]*models.AutomationConfig, error) {
	return m.store.Automations(ctx)
}

func (m *Manager) testConnectivity(ctx context.Context, automation *models.AutomationConfig) error {
	if automation.PlatformID == models.PlatformGenericWebhook {
		return nil
	}

	// Probe the automation's own target with its own credentials.
	probe := &models.PlatformDescriptor{
		ID:           automation.PlatformID,
		BaseEndpoint: automation.WebhookURL,
		Auth:         automation.Auth,
	}

	if err := m.tester.Test(ctx, probe); err != nil {
		return &platforms.ConnectionError{PlatformID: automation.PlatformID, Err: err}
	}

	return nil
}

func patchTouchesTarget(patch *models.AutomationPatch) bool {
	return patch.PlatformID != nil || patch.WebhookURL != nil || patch.Auth != nil
}
