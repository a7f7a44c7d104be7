package pgbus

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetsvc/cars-bills/internal/middleware"
)

// HandlerFunc processes one message payload. A non-nil error marks the
// message failed; failed messages are not retried and stay in the table as
// the dead-letter record.
type HandlerFunc func(ctx context.Context, payload []byte) error

// Consumer polls the bus for pending messages on its registered topics and
// dispatches them to handlers. Locked rows are skipped, so multiple consumer
// instances can run against the same topics without double delivery within
// one polling pass.
type Consumer struct {
	pool     *pgxpool.Pool
	logger   *slog.Logger
	interval time.Duration
	batch    int
	handlers map[string]HandlerFunc
	topics   []string
}

// NewConsumer creates a Consumer polling every interval.
func NewConsumer(pool *pgxpool.Pool, logger *slog.Logger, interval time.Duration) *Consumer {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Consumer{
		pool:     pool,
		logger:   logger,
		interval: interval,
		batch:    32,
		handlers: make(map[string]HandlerFunc),
	}
}

// Handle registers a handler for a topic. Must be called before Run.
func (c *Consumer) Handle(topic string, h HandlerFunc) {
	c.handlers[topic] = h
	c.topics = append(c.topics, topic)
}

// Run polls until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("Bus consumer started", slog.Any("topics", c.topics), slog.Duration("interval", c.interval))
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Bus consumer stopped")
			return
		case <-ticker.C:
			if err := c.poll(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error("Bus polling pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

type busMessage struct {
	id      int64
	topic   string
	payload []byte
}

// poll claims a batch of pending messages inside one transaction, dispatches
// each to its handler and records the outcome. The transaction commits after
// the whole batch, so a crash mid-batch redelivers the claimed messages.
func (c *Consumer) poll(ctx context.Context) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT message_id, topic, payload
		FROM bus_messages
		WHERE status = $1 AND topic = ANY($2)
		ORDER BY message_id
		FOR UPDATE SKIP LOCKED
		LIMIT $3;
	`, statusPending, c.topics, c.batch)
	if err != nil {
		return err
	}

	var batch []busMessage
	for rows.Next() {
		var m busMessage
		if err := rows.Scan(&m.id, &m.topic, &m.payload); err != nil {
			rows.Close()
			return err
		}
		batch = append(batch, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range batch {
		msgLogger := c.logger.With(slog.Int64("message_id", m.id), slog.String("topic", m.topic))
		msgCtx := middleware.WithLogger(ctx, msgLogger)

		status := statusDone
		var lastErr *string
		if err := c.handlers[m.topic](msgCtx, m.payload); err != nil {
			// Domain failures are terminal for the message: no automatic
			// retry, the row stays behind as the dead-letter record.
			msg := err.Error()
			lastErr = &msg
			status = statusFailed
			msgLogger.Error("Message handling failed", slog.String("error", msg))
		} else {
			msgLogger.Info("Message handled")
		}

		_, err = tx.Exec(ctx, `
			UPDATE bus_messages
			SET status = $2, attempts = attempts + 1, last_error = $3, processed_at = now()
			WHERE message_id = $1;
		`, m.id, status, lastErr)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
