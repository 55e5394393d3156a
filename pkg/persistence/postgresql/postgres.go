// Package postgresql provides a PostgreSQL persistence implementation.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/hookflow/hookflow/pkg/models"
	"github.com/hookflow/hookflow/pkg/persistence"
	"github.com/hookflow/hookflow/pkg/persistence/sqlbase"
)

// Persistence stores each entity as a JSONB document with indexed
// bookkeeping columns.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects to PostgreSQL and runs migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	if err := migrationManager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{db: database, logger: logger}, nil
}

func (p *Persistence) Automations(ctx context.Context) ([]*models.AutomationConfig, error) {
	return queryAll[models.AutomationConfig](ctx, p.db, "SELECT data FROM automations ORDER BY created_at")
}

func (p *Persistence) AutomationByID(ctx context.Context, id string) (*models.AutomationConfig, error) {
	return queryOne[models.AutomationConfig](ctx, p.db,
		"SELECT data FROM automations WHERE id = $1", id, persistence.ErrAutomationNotFound)
}

func (p *Persistence) SaveAutomation(ctx context.Context, automation *models.AutomationConfig) error {
	data, err := json.Marshal(automation)
	if err != nil {
		return fmt.Errorf("failed to marshal automation %s: %w", automation.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO automations (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $4`,
		automation.ID, data, automation.CreatedAt, automation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save automation %s: %w", automation.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteAutomation(ctx context.Context, id string) error {
	return p.deleteByID(ctx, "automations", id, persistence.ErrAutomationNotFound)
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return queryAll[models.WorkflowDefinition](ctx, p.db, "SELECT data FROM workflows ORDER BY created_at")
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return queryOne[models.WorkflowDefinition](ctx, p.db,
		"SELECT data FROM workflows WHERE id = $1", id, persistence.ErrWorkflowNotFound)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	data, err := json.Marshal(workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow %s: %w", workflow.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO workflows (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $4`,
		workflow.ID, data, workflow.Metadata.CreatedAt, workflow.Metadata.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.deleteByID(ctx, "workflows", id, persistence.ErrWorkflowNotFound)
}

func (p *Persistence) Executions(ctx context.Context) ([]*models.ExecutionRecord, error) {
	return queryAll[models.ExecutionRecord](ctx, p.db, "SELECT data FROM executions ORDER BY started_at, id")
}

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	return queryOne[models.ExecutionRecord](ctx, p.db,
		"SELECT data FROM executions WHERE id = $1", id, persistence.ErrExecutionNotFound)
}

func (p *Persistence) SaveExecution(ctx context.Context, execution *models.ExecutionRecord) error {
	data, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("failed to marshal execution %s: %w", execution.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO executions (id, data, status, started_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = $2, status = $3`,
		execution.ID, data, string(execution.Status), execution.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (p *Persistence) DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := p.db.ExecContext(ctx, "DELETE FROM executions WHERE started_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old executions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted executions: %w", err)
	}

	return int(deleted), nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) Close(_ context.Context) error {
	return p.db.Close()
}

func (p *Persistence) deleteByID(ctx context.Context, table, id string, notFound error) error {
	result, err := p.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count deleted rows: %w", err)
	}

	if affected == 0 {
		return notFound
	}

	return nil
}

func queryOne[T any](ctx context.Context, db *sql.DB, query, id string, notFound error) (*T, error) {
	var data []byte

	err := db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", id, err)
	}

	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}

	return value, nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, query string) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	values := make([]*T, 0)

	for rows.Next() {
		var data []byte

		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		value := new(T)
		if err := json.Unmarshal(data, value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal row: %w", err)
		}

		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return values, nil
}
