package dispatch

import (
	"encoding/base64"

	"github.com/hookflow/hookflow/pkg/models"
)

const (
	userAgent           = "hookflow/1.0"
	defaultAPIKeyHeader = "X-API-Key"
	platformHeader      = "X-Hookflow-Platform"
)

// BuildHeaders merges the base header set with automation-level custom
// headers and the auth scheme's headers, in that order. Later layers win.
func BuildHeaders(automation *models.AutomationConfig) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   userAgent,
	}

	if automation.PlatformID != "" {
		headers[platformHeader] = automation.PlatformID
	}

	for key, value := range automation.Headers {
		headers[key] = value
	}

	for key, value := range AuthHeaders(automation.Auth) {
		headers[key] = value
	}

	return headers
}

// AuthHeaders builds the scheme-specific auth headers.
func AuthHeaders(auth models.AuthConfig) map[string]string {
	headers := make(map[string]string)

	switch auth.Scheme {
	case models.AuthAPIKey:
		header := auth.APIKeyHeader
		if header == "" {
			header = defaultAPIKeyHeader
		}

		if auth.APIKey != "" {
			headers[header] = auth.APIKey
		}
	case models.AuthBearer, models.AuthOAuth:
		if auth.Token != "" {
			headers["Authorization"] = "Bearer " + auth.Token
		}
	case models.AuthBasic:
		if auth.Username != "" || auth.Password != "" {
			credentials := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
			headers["Authorization"] = "Basic " + credentials
		}
	case models.AuthCustom:
		for key, value := range auth.Custom {
			headers[key] = value
		}
	case models.AuthNone, models.AuthWebhook:
	}

	return headers
}
