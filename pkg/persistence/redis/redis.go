// Package redis provides a Redis-backed persistence implementation.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/redis/go-redis/v9"
)

const (
	automationPrefix = "automation:"
	workflowPrefix   = "workflow:"
	executionPrefix  = "execution:"

	connectTimeout = 5 * time.Second
)

// Persistence stores each entity as a JSON value under a prefixed key.
type Persistence struct {
	client *redis.Client
}

// NewPersistence connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewPersistence(databaseURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Persistence{client: client}, nil
}

func (p *Persistence) save(ctx context.Context, prefix, id string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s%s: %w", prefix, id, err)
	}

	if err := p.client.Set(ctx, prefix+id, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s%s: %w", prefix, id, err)
	}

	return nil
}

func get[T any](ctx context.Context, client *redis.Client, prefix, id string, notFound error) (*T, error) {
	data, err := client.Get(ctx, prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get %s%s: %w", prefix, id, err)
	}

	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s%s: %w", prefix, id, err)
	}

	return value, nil
}

func list[T any](ctx context.Context, client *redis.Client, prefix string) ([]*T, error) {
	values := make([]*T, 0)
	iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()

	for iter.Next(ctx) {
		data, err := client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", iter.Val(), err)
		}

		value := new(T)
		if err := json.Unmarshal(data, value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", iter.Val(), err)
		}

		values = append(values, value)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s keys: %w", prefix, err)
	}

	return values, nil
}

func (p *Persistence) delete(ctx context.Context, prefix, id string, notFound error) error {
	deleted, err := p.client.Del(ctx, prefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s%s: %w", prefix, id, err)
	}

	if deleted == 0 {
		return notFound
	}

	return nil
}

func (p *Persistence) Automations(ctx context.Context) ([]*models.AutomationConfig, error) {
	return list[models.AutomationConfig](ctx, p.client, automationPrefix)
}

func (p *Persistence) AutomationByID(ctx context.Context, id string) (*models.AutomationConfig, error) {
	return get[models.AutomationConfig](ctx, p.client, automationPrefix, id, persistence.ErrAutomationNotFound)
}

func (p *Persistence) SaveAutomation(ctx context.Context, automation *models.AutomationConfig) error {
	return p.save(ctx, automationPrefix, automation.ID, automation)
}

func (p *Persistence) DeleteAutomation(ctx context.Context, id string) error {
	return p.delete(ctx, automationPrefix, id, persistence.ErrAutomationNotFound)
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return list[models.WorkflowDefinition](ctx, p.client, workflowPrefix)
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return get[models.WorkflowDefinition](ctx, p.client, workflowPrefix, id, persistence.ErrWorkflowNotFound)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	return p.save(ctx, workflowPrefix, workflow.ID, workflow)
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.delete(ctx, workflowPrefix, id, persistence.ErrWorkflowNotFound)
}

func (p *Persistence) Executions(ctx context.Context) ([]*models.ExecutionRecord, error) {
	return list[models.ExecutionRecord](ctx, p.client, executionPrefix)
}

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	return get[models.ExecutionRecord](ctx, p.client, executionPrefix, id, persistence.ErrExecutionNotFound)
}

func (p *Persistence) SaveExecution(ctx context.Context, execution *models.ExecutionRecord) error {
	return p.save(ctx, executionPrefix, execution.ID, execution)
}

func (p *Persistence) DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	executions, err := p.Executions(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0

	for _, execution := range executions {
		if execution.StartedAt.Before(cutoff) {
			if err := p.client.Del(ctx, executionPrefix+execution.ID).Err(); err != nil {
				return deleted, fmt.Errorf("failed to delete execution %s: %w", execution.ID, err)
			}

			deleted++
		}
	}

	return deleted, nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}
