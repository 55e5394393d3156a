// Package chat implements the chat platform adapter: it posts one
// message to a channel.
package chat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/platforms"
)

type Adapter struct {
	descriptor *models.PlatformDescriptor
	client     *http.Client
}

// NewFactory returns the adapter factory for the chat platform.
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

func (a *Adapter) Execute(ctx context.Context, step *models.Step, data map[string]any) (map[string]any, error) {
	channel := platforms.StringConfig(step.Config, "channel")
	if channel == "" {
		return nil, fmt.Errorf("chat step %s has no channel configured", step.ID)
	}

	text := platforms.StringConfig(step.Config, "message")
	if text == "" {
		if fromData, ok := data["message"].(string); ok {
			text = fromData
		}
	}

	body := map[string]any{
		"channel": channel,
		"text":    text,
	}

	url := a.descriptor.BaseEndpoint + "/messages"

	statusCode, response, err := platforms.PostJSON(ctx, a.client, a.descriptor, url, body)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status_code": statusCode,
		"channel":     channel,
		"response":    response,
	}, nil
}
