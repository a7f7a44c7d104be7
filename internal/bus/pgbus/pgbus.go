// Package pgbus implements the durable event bus on top of a shared Postgres
// table. Delivery is at-least-once: a message picked up by a consumer that
// dies before committing its status update is delivered again.
package pgbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Message statuses.
const (
	statusPending = "pending"
	statusDone    = "done"
	statusFailed  = "failed"
)

const ensureSchema = `
CREATE TABLE IF NOT EXISTS bus_messages (
	message_id   BIGSERIAL PRIMARY KEY,
	topic        TEXT NOT NULL,
	payload      JSONB NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	attempts     INT NOT NULL DEFAULT 0,
	last_error   TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	processed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_bus_messages_pending
	ON bus_messages (topic, message_id) WHERE status = 'pending';
`

// Ensure creates the bus table if it does not exist yet. Both services call
// it at startup; the statement is idempotent so the order does not matter.
func Ensure(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ensureSchema); err != nil {
		return fmt.Errorf("failed to ensure bus schema: %w", err)
	}
	return nil
}

// Publisher writes messages onto the bus.
type Publisher struct {
	pool *pgxpool.Pool
}

// NewPublisher creates a Publisher backed by the shared bus database.
func NewPublisher(pool *pgxpool.Pool) *Publisher {
	return &Publisher{pool: pool}
}

// Publish serializes payload as JSON and enqueues it on topic. It returns
// once the message is durably stored; no confirmation from the remote
// consumer is awaited.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for topic %s: %w", topic, err)
	}

	query := `INSERT INTO bus_messages (topic, payload) VALUES ($1, $2);`
	if _, err := p.pool.Exec(ctx, query, topic, body); err != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return nil
}
