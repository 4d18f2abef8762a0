package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/mbean-bridge/internal/attribute"
)

const (
	upsertPropertySQL = `
INSERT INTO property_state (target_id, name, value_type, value, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (target_id, name) DO UPDATE
SET value_type = EXCLUDED.value_type, value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	getPropertySQL = `
SELECT name, value_type, value, updated_at FROM property_state
WHERE target_id = $1 AND name = $2`

	listPropertiesSQL = `
SELECT name, value_type, value, updated_at FROM property_state
WHERE target_id = $1 ORDER BY name`
)

// DBSink stores property state in PostgreSQL. Each batch is written in a
// single transaction.
type DBSink struct {
	pool *pgxpool.Pool
}

// NewDBSink creates a database-backed sink.
func NewDBSink(pool *pgxpool.Pool) *DBSink {
	return &DBSink{pool: pool}
}

// ApplyBatch implements PropertySink
func (d *DBSink) ApplyBatch(ctx context.Context, target string, rows []attribute.Row) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		env, err := attribute.Encode(row.Value)
		if err != nil {
			return fmt.Errorf("property %s: %w", row.Name, err)
		}
		batch.Queue(upsertPropertySQL, target, row.Name, string(env.Type), []byte(env.Value), row.Timestamp.UTC())
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	results := tx.SendBatch(ctx, batch)
	for _, row := range rows {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to store property %s of target '%s': %w", row.Name, target, err)
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetState implements PropertySink
func (d *DBSink) GetState(ctx context.Context, target, name string) (*attribute.State, error) {
	st, err := scanState(d.pool.QueryRow(ctx, getPropertySQL, target, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrStateNotFound, target, name)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ListStates implements PropertySink
func (d *DBSink) ListStates(ctx context.Context, target string) ([]attribute.State, error) {
	rows, err := d.pool.Query(ctx, listPropertiesSQL, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []attribute.State
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *st)
	}
	return result, rows.Err()
}

func scanState(row pgx.Row) (*attribute.State, error) {
	var (
		name      string
		valueType string
		raw       []byte
		updatedAt time.Time
	)
	if err := row.Scan(&name, &valueType, &raw, &updatedAt); err != nil {
		return nil, err
	}

	value, err := attribute.Decode(&attribute.Envelope{Type: attribute.ValueType(valueType), Value: json.RawMessage(raw)})
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", name, err)
	}
	return &attribute.State{Name: name, Value: value, LastUpdate: updatedAt}, nil
}
