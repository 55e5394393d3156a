// Package llm implements the LLM platform adapter: it requests one
// completion for the configured prompt.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/platforms"
)

const defaultModel = "default"

type Adapter struct {
	descriptor *models.PlatformDescriptor
	client     *http.Client
}

// NewFactory returns the adapter factory for the LLM platform.
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
	prompt := platforms.StringConfig(step.Config, "prompt")
	if prompt == "" {
		return nil, fmt.Errorf("llm step %s has no prompt configured", step.ID)
	}

	model := platforms.StringConfig(step.Config, "model")
	if model == "" {
		model = defaultModel
	}

	body := map[string]any{
		"model":  model,
		"prompt": prompt,
	}

	url := a.descriptor.BaseEndpoint + "/completions"

	statusCode, response, err := platforms.PostJSON(ctx, a.client, a.descriptor, url, body)
	if err != nil {
		return nil, err
	}

	result := map[string]any{
		"status_code": statusCode,
		"model":       model,
	}

	if completion, ok := response["completion"]; ok {
		result["completion"] = completion
	} else {
		result["response"] = response
	}

	return result, nil
}
