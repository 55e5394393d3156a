// Package crm implements the CRM platform adapter. CRM APIs want flat
// bodies, so nested carried data is flattened to dotted keys before the
// upsert.
package crm

import (
	"context"
	"net/http"

	"github.com/hookflow/hookflow/pkg/dispatch"
	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/platforms"
)

const defaultObjectType = "contact"

type Adapter struct {
	descriptor *models.PlatformDescriptor
	client     *http.Client
}

// NewFactory returns the adapter factory for the CRM platform.
func NewFactory() models.AdapterFactory {
	return func(descriptor *models.PlatformDescriptor) (models.Adapter, error) {
		return &Adapter{
			descriptor: descriptor,
			client:     &http.Client{},
		}, nil
	}
}

func (a *Adapter) PlatformID() string {
	return a.descriptor.ID
}

// Execute upserts one CRM object. The step config may name the object
// type and a field mapping of target field to dotted source path in the
// carried data; without a mapping the flattened data is sent as-is.
func (a *Adapter) Execute(ctx context.Context, step *models.Step, data map[string]any) (map[string]any, error) {
	objectType := platforms.StringConfig(step.Config, "object_type")
	if objectType == "" {
		objectType = defaultObjectType
	}

	body := dispatch.FlattenPayload(data)
	if mapping := fieldMapping(step.Config); len(mapping) > 0 {
		body = dispatch.ApplyFieldMapping(mapping, data)
	}

	url := a.descriptor.BaseEndpoint + "/objects/" + objectType

	statusCode, response, err := platforms.PostJSON(ctx, a.client, a.descriptor, url, body)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status_code": statusCode,
		"object_type": objectType,
		"response":    response,
	}, nil
}

func fieldMapping(config map[string]any) map[string]string {
	raw, ok := config["fields"].(map[string]any)
	if !ok {
		return nil
	}

	mapping := make(map[string]string, len(raw))

	for target, source := range raw {
		if path, ok := source.(string); ok {
			mapping[target] = path
		}
	}

	return mapping
}
