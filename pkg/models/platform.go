// Package models defines the core domain models for event automations and workflow execution.
package models

// AuthScheme identifies how requests to a platform are authenticated.
type AuthScheme string

const (
	AuthNone    AuthScheme = "none"
	AuthAPIKey  AuthScheme = "api_key"
	AuthOAuth   AuthScheme = "oauth"
	AuthBasic   AuthScheme = "basic"
	AuthBearer  AuthScheme = "bearer"
	AuthCustom  AuthScheme = "custom"
	AuthWebhook AuthScheme = "webhook"
)

// AuthConfig carries the credentials for one auth scheme. Only the fields
// relevant to the scheme are populated.
type AuthConfig struct {
	Scheme       AuthScheme        `json:"scheme"`
	APIKey       string            `json:"api_key,omitempty"`
	APIKeyHeader string            `json:"api_key_header,omitempty"`
	Token        string            `json:"token,omitempty"`
	Username     string            `json:"username,omitempty"`
	Password     string            `json:"password,omitempty"`
	Custom       map[string]string `json:"custom,omitempty"`
}

// Merge overlays the non-empty fields of partial onto a copy of the config.
func (a AuthConfig) Merge(partial AuthConfig) AuthConfig {
	merged := a

	if partial.Scheme != "" {
		merged.Scheme = partial.Scheme
	}

	if partial.APIKey != "" {
		merged.APIKey = partial.APIKey
	}

	if partial.APIKeyHeader != "" {
		merged.APIKeyHeader = partial.APIKeyHeader
	}

	if partial.Token != "" {
		merged.Token = partial.Token
	}

	if partial.Username != "" {
		merged.Username = partial.Username
	}

	if partial.Password != "" {
		merged.Password = partial.Password
	}

	if len(partial.Custom) > 0 {
		custom := make(map[string]string, len(merged.Custom)+len(partial.Custom))
		for k, v := range merged.Custom {
			custom[k] = v
		}

		for k, v := range partial.Custom {
			custom[k] = v
		}

		merged.Custom = custom
	}

	return merged
}

// Capabilities declares what a platform integration supports.
type Capabilities struct {
	WebhookPush  bool `json:"webhook_push"`
	Polling      bool `json:"polling"`
	RealtimePush bool `json:"realtime_push"`
	FileUpload   bool `json:"file_upload"`
	CustomFields bool `json:"custom_fields"`
}

// RateLimit declares a platform's request budget. The core does not enforce
// it; adapters and callers are expected to respect it.
type RateLimit struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	RequestsPerHour   int `json:"requests_per_hour"`
}

// PlatformDescriptor describes one external integration target.
type PlatformDescriptor struct {
	ID           string       `json:"id"            validate:"required,min=3"`
	Name         string       `json:"name"          validate:"required"`
	BaseEndpoint string       `json:"base_endpoint,omitempty"`
	Auth         AuthConfig   `json:"auth"`
	Capabilities Capabilities `json:"capabilities"`
	RateLimit    RateLimit    `json:"rate_limit"`
}

// Clone returns a deep copy of the descriptor.
func (p *PlatformDescriptor) Clone() *PlatformDescriptor {
	clone := *p
	clone.Auth = p.Auth.Merge(AuthConfig{})

	return &clone
}
