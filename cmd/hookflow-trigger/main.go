// Package main provides a small CLI for firing events at a running
// hookflow API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hookflow/hookflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	logger := log.WithModule("trigger")

	command := &cli.Command{
		Name:                  "hookflow-trigger",
		Usage:                 "Fire an event at a hookflow API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the hookflow API",
				Value:   "http://localhost:9091",
				Sources: cli.EnvVars("HOOKFLOW_API_URL"),
			},
			&cli.StringFlag{
				Name:     "kind",
				Aliases:  []string{"k"},
				Usage:    "Event kind, e.g. message.received",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "payload",
				Aliases: []string{"d"},
				Usage:   "Event payload as a JSON object",
				Value:   "{}",
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "Optional event context as a JSON object",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			var payload map[string]any
			if err := json.Unmarshal([]byte(command.String("payload")), &payload); err != nil {
				return fmt.Errorf("invalid payload JSON: %w", err)
			}

			request := map[string]any{
				"kind":    command.String("kind"),
				"payload": payload,
			}

			if raw := command.String("context"); raw != "" {
				var contextData map[string]any
				if err := json.Unmarshal([]byte(raw), &contextData); err != nil {
					return fmt.Errorf("invalid context JSON: %w", err)
				}

				request["context"] = contextData
			}

			body, err := json.Marshal(request)
			if err != nil {
				return err
			}

			url := command.String("api-url") + "/events"

			requestCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}

			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to reach API at %s: %w", url, err)
			}

			defer func() {
				_ = resp.Body.Close()
			}()

			responseBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API returned status %d: %s", resp.StatusCode, responseBody)
			}

			logger.InfoContext(ctx, "Event dispatched", "kind", command.String("kind"))
			fmt.Println(string(responseBody))

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
