// Package platforms holds the catalog of platform descriptors and the
// adapter registry the execution engine dispatches through.
package platforms

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/hookflow/hookflow/pkg/models"
)

// Registry holds one descriptor per platform id plus the adapter
// factories used to dispatch against each platform. It is safe for
// concurrent use.
type Registry struct {
	logger *slog.Logger
	tester ConnectivityTester

	mu          sync.RWMutex
	descriptors map[string]*models.PlatformDescriptor
	factories   map[string]models.AdapterFactory
}

// NewRegistry creates a registry seeded with the default catalog.
func NewRegistry(logger *slog.Logger, tester ConnectivityTester) *Registry {
	registry := &Registry{
		logger:      logger.With("module", "platforms"),
		tester:      tester,
		descriptors: make(map[string]*models.PlatformDescriptor),
		factories:   make(map[string]models.AdapterFactory),
	}

	registry.Seed(DefaultCatalog()...)

	return registry
}

// Seed adds or replaces descriptors in the catalog.
func (r *Registry) Seed(descriptors ...*models.PlatformDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, descriptor := range descriptors {
		r.descriptors[descriptor.ID] = descriptor.Clone()
	}
}

// List returns a snapshot of all descriptors, sorted by id.
func (r *Registry) List() []*models.PlatformDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]*models.PlatformDescriptor, 0, len(r.descriptors))
	for _, descriptor := range r.descriptors {
		descriptors = append(descriptors, descriptor.Clone())
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].ID < descriptors[j].ID
	})

	return descriptors
}

// Get returns a copy of the descriptor for the platform id.
func (r *Registry) Get(id string) (*models.PlatformDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptor, ok := r.descriptors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotFound, id)
	}

	return descriptor.Clone(), nil
}

// Configure merges a partial auth config into the platform's descriptor.
// The merged result must pass a connectivity test before it is accepted;
// a failing test returns a ConnectionError and leaves the stored
// descriptor unchanged.
func (r *Registry) Configure(ctx context.Context, id string, partial models.AuthConfig) (*models.PlatformDescriptor, error) {
	current, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	candidate := current.Clone()
	candidate.Auth = candidate.Auth.Merge(partial)

	if err := r.tester.Test(ctx, candidate); err != nil {
		r.logger.WarnContext(ctx, "Platform configuration rejected",
			"platform_id", id,
			"error", err,
		)

		return nil, &ConnectionError{PlatformID: id, Err: err}
	}

	r.mu.Lock()
	r.descriptors[id] = candidate
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Platform configured", "platform_id", id, "auth_scheme", candidate.Auth.Scheme)

	return candidate.Clone(), nil
}

// RegisterAdapter binds an adapter factory to a platform id.
func (r *Registry) RegisterAdapter(platformID string, factory models.AdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[platformID] = factory
}

// CreateAdapter builds the adapter for a platform id using its current
// descriptor. Platform ids with no registered factory fall back to an
// identity pass-through adapter.
func (r *Registry) CreateAdapter(platformID string) (models.Adapter, error) {
	r.mu.RLock()
	factory, ok := r.factories[platformID]
	descriptor := r.descriptors[platformID]
	r.mu.RUnlock()

	if !ok {
		return NewPassthroughAdapter(platformID), nil
	}

	if descriptor == nil {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotFound, platformID)
	}

	return factory(descriptor.Clone())
}
