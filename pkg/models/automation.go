package models

import "time"

// Dispatch timeout bounds, in milliseconds.
const (
	MinTimeoutMs = 1000
	MaxTimeoutMs = 300000
)

// PlatformGenericWebhook is the platform id that skips the connectivity
// test at registration time.
const PlatformGenericWebhook = "generic-webhook"

// AutomationConfig is a simple event-triggered rule that dispatches one
// webhook call when a matching event arrives.
type AutomationConfig struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"           validate:"required,min=1"`
	PlatformID    string            `json:"platform_id"`
	Active        bool              `json:"active"`
	TriggerEvents []string          `json:"trigger_events" validate:"required,min=1"`
	WebhookURL    string            `json:"webhook_url"    validate:"required"`
	Auth          AuthConfig        `json:"auth"`
	Headers       map[string]string `json:"headers,omitempty"`
	TimeoutMs     int               `json:"timeout_ms"`
	RetryAttempts int               `json:"retry_attempts"`
	RetryDelayMs  int               `json:"retry_delay_ms"`
	Conditions    []Condition       `json:"conditions,omitempty"`
	FieldMapping  map[string]string `json:"field_mapping,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// MatchesEvent reports whether the automation is active and subscribes to
// the given event kind.
func (a *AutomationConfig) MatchesEvent(kind string) bool {
	if !a.Active {
		return false
	}

	for _, trigger := range a.TriggerEvents {
		if trigger == kind {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of the automation.
func (a *AutomationConfig) Clone() *AutomationConfig {
	clone := *a
	clone.Auth = a.Auth.Merge(AuthConfig{})

	if a.TriggerEvents != nil {
		clone.TriggerEvents = append([]string(nil), a.TriggerEvents...)
	}

	if a.Headers != nil {
		clone.Headers = make(map[string]string, len(a.Headers))
		for k, v := range a.Headers {
			clone.Headers[k] = v
		}
	}

	if a.Conditions != nil {
		clone.Conditions = append([]Condition(nil), a.Conditions...)
	}

	if a.FieldMapping != nil {
		clone.FieldMapping = make(map[string]string, len(a.FieldMapping))
		for k, v := range a.FieldMapping {
			clone.FieldMapping[k] = v
		}
	}

	return &clone
}

// AutomationPatch is a partial update applied over an existing automation.
// Nil fields leave the current value unchanged.
type AutomationPatch struct {
	Name          *string           `json:"name,omitempty"`
	PlatformID    *string           `json:"platform_id,omitempty"`
	Active        *bool             `json:"active,omitempty"`
	TriggerEvents []string          `json:"trigger_events,omitempty"`
	WebhookURL    *string           `json:"webhook_url,omitempty"`
	Auth          *AuthConfig       `json:"auth,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	TimeoutMs     *int              `json:"timeout_ms,omitempty"`
	RetryAttempts *int              `json:"retry_attempts,omitempty"`
	RetryDelayMs  *int              `json:"retry_delay_ms,omitempty"`
	Conditions    []Condition       `json:"conditions,omitempty"`
	FieldMapping  map[string]string `json:"field_mapping,omitempty"`
}

// Apply overlays the patch onto the automation in place.
func (p *AutomationPatch) Apply(a *AutomationConfig) {
	if p.Name != nil {
		a.Name = *p.Name
	}

	if p.PlatformID != nil {
		a.PlatformID = *p.PlatformID
	}

	if p.Active != nil {
		a.Active = *p.Active
	}

	if p.TriggerEvents != nil {
		a.TriggerEvents = append([]string(nil), p.TriggerEvents...)
	}

	if p.WebhookURL != nil {
		a.WebhookURL = *p.WebhookURL
	}

	if p.Auth != nil {
		a.Auth = a.Auth.Merge(*p.Auth)
	}

	if p.Headers != nil {
		a.Headers = p.Headers
	}

	if p.TimeoutMs != nil {
		a.TimeoutMs = *p.TimeoutMs
	}

	if p.RetryAttempts != nil {
		a.RetryAttempts = *p.RetryAttempts
	}

	if p.RetryDelayMs != nil {
		a.RetryDelayMs = *p.RetryDelayMs
	}

	if p.Conditions != nil {
		a.Conditions = append([]Condition(nil), p.Conditions...)
	}

	if p.FieldMapping != nil {
		a.FieldMapping = p.FieldMapping
	}
}
