package platforms

import "github.com/hookflow/hookflow/pkg/models"

// Platform ids shipped in the default catalog.
const (
	PlatformCRM  = "crm"
	PlatformChat = "chat"
	PlatformLLM  = "llm"
)

// DefaultCatalog returns the platform descriptors seeded at startup.
// Credentials are merged in later via Registry.Configure.
func DefaultCatalog() []*models.PlatformDescriptor {
	return []*models.PlatformDescriptor{
		{
			ID:   models.PlatformGenericWebhook,
			Name: "Generic Webhook",
			Auth: models.AuthConfig{Scheme: models.AuthNone},
			Capabilities: models.Capabilities{
				WebhookPush: true,
			},
		},
		{
			ID:           PlatformCRM,
			Name:         "CRM",
			BaseEndpoint: "https://api.crm.example.com/v3",
			Auth:         models.AuthConfig{Scheme: models.AuthAPIKey},
			Capabilities: models.Capabilities{
				WebhookPush:  true,
				Polling:      true,
				CustomFields: true,
			},
			RateLimit: models.RateLimit{
				RequestsPerMinute: 100,
				RequestsPerHour:   4000,
			},
		},
		{
			ID:           PlatformChat,
			Name:         "Chat",
			BaseEndpoint: "https://api.chat.example.com/v1",
			Auth:         models.AuthConfig{Scheme: models.AuthBearer},
			Capabilities: models.Capabilities{
				WebhookPush:  true,
				RealtimePush: true,
				FileUpload:   true,
			},
			RateLimit: models.RateLimit{
				RequestsPerMinute: 60,
				RequestsPerHour:   2000,
			},
		},
		{
			ID:           PlatformLLM,
			Name:         "LLM",
			BaseEndpoint: "https://api.llm.example.com/v1",
			Auth:         models.AuthConfig{Scheme: models.AuthBearer},
			RateLimit: models.RateLimit{
				RequestsPerMinute: 20,
				RequestsPerHour:   500,
			},
		},
	}
}
