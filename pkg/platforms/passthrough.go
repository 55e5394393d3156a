package platforms

import (
	"context"

	"github.com/hookflow/hookflow/pkg/models"
)

// PassthroughAdapter is the fallback for unknown or custom platform ids:
// it returns the carried data unchanged, so unknown action steps advance
// without side effects.
type PassthroughAdapter struct {
	platformID string
}

func NewPassthroughAdapter(platformID string) *PassthroughAdapter {
	return &PassthroughAdapter{platformID: platformID}
}

func (a *PassthroughAdapter) PlatformID() string {
	return a.platformID
}

func (a *PassthroughAdapter) Execute(_ context.Context, _ *models.Step, data map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(data))
	for k, v := range data {
		result[k] = v
	}

	return result, nil
}
