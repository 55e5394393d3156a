package platforms

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func acceptAll(context.Context, *models.PlatformDescriptor) error {
	return nil
}

func TestRegistry_SeededCatalog(t *testing.T) {
	registry := NewRegistry(testLogger(), TesterFunc(acceptAll))

	descriptors := registry.List()
	require.Len(t, descriptors, 4)

	ids := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		ids = append(ids, descriptor.ID)
	}

	assert.Equal(t, []string{PlatformChat, PlatformCRM, models.PlatformGenericWebhook, PlatformLLM}, ids)
}

func TestRegistry_GetUnknownPlatform(t *testing.T) {
	registry := NewRegistry(testLogger(), TesterFunc(acceptAll))

	_, err := registry.Get("unknown")
	require.Error(t, err)
	assert.True(t, IsPlatformNotFound(err))
}

func TestRegistry_ConfigureMergesAuth(t *testing.T) {
	registry := NewRegistry(testLogger(), TesterFunc(acceptAll))

	configured, err := registry.Configure(context.Background(), PlatformCRM, models.AuthConfig{APIKey: "secret"})
	require.NoError(t, err)

	// Scheme survives the merge; only the key changed.
	assert.Equal(t, models.AuthAPIKey, configured.Auth.Scheme)
	assert.Equal(t, "secret", configured.Auth.APIKey)

	stored, err := registry.Get(PlatformCRM)
	require.NoError(t, err)
	assert.Equal(t, "secret", stored.Auth.APIKey)
}

func TestRegistry_ConfigureRollsBackOnFailedTest(t *testing.T) {
	rejectAll := TesterFunc(func(context.Context, *models.PlatformDescriptor) error {
		return errors.New("refused")
	})
	registry := NewRegistry(testLogger(), rejectAll)

	_, err := registry.Configure(context.Background(), PlatformChat, models.AuthConfig{Token: "bad"})
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))

	stored, getErr := registry.Get(PlatformChat)
	require.NoError(t, getErr)
	assert.Empty(t, stored.Auth.Token)
}

func TestRegistry_ConfigureUnknownPlatform(t *testing.T) {
	registry := NewRegistry(testLogger(), TesterFunc(acceptAll))

	_, err := registry.Configure(context.Background(), "unknown", models.AuthConfig{})
	require.Error(t, err)
	assert.True(t, IsPlatformNotFound(err))
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	registry := NewRegistry(testLogger(), TesterFunc(acceptAll))

	descriptor, err := registry.Get(PlatformCRM)
	require.NoError(t, err)

	descriptor.Auth.APIKey = "mutated"

	fresh, err := registry.Get(PlatformCRM)
	require.NoError(t, err)
	assert.Empty(t, fresh.Auth.APIKey)
}

func TestRegistry_CreateAdapterFallsBackToPassthrough(t *testing.T) {
	registry := NewRegistry(testLogger(), TesterFunc(acceptAll))

	adapter, err := registry.CreateAdapter("custom-platform")
	require.NoError(t, err)
	assert.Equal(t, "custom-platform", adapter.PlatformID())

	data := map[string]any{"key": "value"}
	result, err := adapter.Execute(context.Background(), &models.Step{ID: "s1"}, data)
	require.NoError(t, err)
	assert.Equal(t, data, result)
}

func TestRegistry_CreateAdapterUsesCurrentDescriptor(t *testing.T) {
	registry := NewRegistry(testLogger(), TesterFunc(acceptAll))

	var seen *models.PlatformDescriptor

	registry.RegisterAdapter(PlatformLLM, func(descriptor *models.PlatformDescriptor) (models.Adapter, error) {
		seen = descriptor

		return NewPassthroughAdapter(descriptor.ID), nil
	})

	_, err := registry.Configure(context.Background(), PlatformLLM, models.AuthConfig{Token: "tok"})
	require.NoError(t, err)

	_, err = registry.CreateAdapter(PlatformLLM)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "tok", seen.Auth.Token)
}
