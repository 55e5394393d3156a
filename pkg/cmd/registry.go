// Package cmd provides common initialization for the command-line
// binaries.
package cmd

import (
	"log/slog"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/platforms"
	"github.com/hookflow/hookflow/pkg/platforms/chat"
	"github.com/hookflow/hookflow/pkg/platforms/crm"
	"github.com/hookflow/hookflow/pkg/platforms/llm"
	"github.com/hookflow/hookflow/pkg/platforms/webhook"
)

// NewPlatformRegistry builds the platform registry with the seeded
// catalog and the native adapters bound to their platform ids.
func NewPlatformRegistry(logger *slog.Logger) *platforms.Registry {
	registry := platforms.NewRegistry(logger, platforms.NewHTTPTester(logger))

	registry.RegisterAdapter(models.PlatformGenericWebhook, webhook.NewFactory())
	registry.RegisterAdapter(platforms.PlatformCRM, crm.NewFactory())
	registry.RegisterAdapter(platforms.PlatformChat, chat.NewFactory())
	registry.RegisterAdapter(platforms.PlatformLLM, llm.NewFactory())

	return registry
}
