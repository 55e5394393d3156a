package dispatch

import (
	"time"

	"github.com/hookflow/hookflow/pkg/models"
)

// SourceMarker tags every outgoing envelope with its origin.
const SourceMarker = "hookflow"

// Event is one inbound occurrence to dispatch.
type Event struct {
	Kind      string
	Payload   map[string]any
	Context   map[string]any
	Timestamp time.Time
}

// BuildEnvelope wraps an event in the base wire envelope.
func BuildEnvelope(event Event) map[string]any {
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	envelope := map[string]any{
		"event":     event.Kind,
		"timestamp": timestamp.UTC().Format(time.RFC3339),
		"data":      event.Payload,
		"source":    SourceMarker,
	}

	if event.Context != nil {
		envelope["context"] = event.Context
	}

	return envelope
}

// ShapePayload applies the platform-specific body shape. CRM-style
// platforms require flat bodies, so nested keys are flattened to dotted
// paths; chat and LLM platforms get their platform marker added to the
// envelope; everything else passes through unchanged.
func ShapePayload(platformID string, envelope map[string]any) map[string]any {
	switch platformID {
	case "crm":
		return FlattenPayload(envelope)
	case "chat", "llm":
		shaped := make(map[string]any, len(envelope)+1)
		for k, v := range envelope {
			shaped[k] = v
		}

		shaped["platform"] = platformID

		return shaped
	default:
		return envelope
	}
}

// FlattenPayload collapses nested maps into dotted top-level keys.
func FlattenPayload(payload map[string]any) map[string]any {
	flat := make(map[string]any, len(payload))
	flatten("", payload, flat)

	return flat
}

func flatten(prefix string, value map[string]any, out map[string]any) {
	for key, v := range value {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if nested, ok := v.(map[string]any); ok {
			flatten(path, nested, out)

			continue
		}

		out[path] = v
	}
}

// ApplyFieldMapping projects the envelope through an explicit allow-list.
// The projection REPLACES the shaped payload: only mapped target fields
// appear in the result, each resolved from its dotted source path.
func ApplyFieldMapping(mapping map[string]string, envelope map[string]any) map[string]any {
	projected := make(map[string]any, len(mapping))

	for target, sourcePath := range mapping {
		if value, found := models.LookupPath(sourcePath, envelope); found {
			projected[target] = value
		}
	}

	return projected
}

// BuildPayload produces the final request body for one automation: the
// base envelope, shaped for the platform, replaced by the field-mapping
// projection when one is configured.
func BuildPayload(automation *models.AutomationConfig, event Event) map[string]any {
	envelope := BuildEnvelope(event)

	if len(automation.FieldMapping) > 0 {
		return ApplyFieldMapping(automation.FieldMapping, envelope)
	}

	return ShapePayload(automation.PlatformID, envelope)
}
