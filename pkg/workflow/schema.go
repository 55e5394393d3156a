package workflow

import (
	"fmt"
	"strings"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Step config schemas, one per executable step kind. Kinds without an
// entry accept any config.
var stepConfigSchemas = map[models.StepKind]map[string]any{
	models.StepKindCondition: {
		"type":     "object",
		"required": []string{"expression"},
		"properties": map[string]any{
			"expression": map[string]any{"type": "string", "minLength": 1},
		},
	},
	models.StepKindDelay: {
		"type":     "object",
		"required": []string{"duration_ms"},
		"properties": map[string]any{
			"duration_ms": map[string]any{"type": "integer", "minimum": 0},
		},
	},
}

func validateStepConfig(step *models.Step) error {
	schema, ok := stepConfigSchemas[step.Kind]
	if !ok {
		return nil
	}

	config := step.Config
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate config for step %s: %w", step.ID, err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return models.NewValidationError(
			fmt.Sprintf("steps.%s.config", step.ID),
			strings.Join(descriptions, "; "),
		)
	}

	return nil
}
