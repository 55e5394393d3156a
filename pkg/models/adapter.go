package models

import "context"

// Adapter is one narrow dispatch strategy per platform id. The execution
// engine depends only on this contract: platform id plus step config plus
// carried data in, a result or an error out.
type Adapter interface {
	PlatformID() string
	Execute(ctx context.Context, step *Step, data map[string]any) (map[string]any, error)
}

// AdapterFactory builds an adapter bound to a platform descriptor.
type AdapterFactory func(descriptor *PlatformDescriptor) (Adapter, error)
