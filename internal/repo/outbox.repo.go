package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// OutboxRecord is one undelivered (or delivered) order event. Records are
// inserted in the same transaction as the order mutation they describe and
// drained by the dispatcher worker.
type OutboxRecord struct {
	ID        int64
	EventID   string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}

type OutboxRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, eventID, topic, key string, payload any) error
	FetchPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, id int64) error
}

type outboxRepo struct {
	db *sql.DB
}

func NewOutboxRepo(db *sql.DB) OutboxRepo {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Insert(ctx context.Context, tx *sql.Tx, eventID, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO outbox (event_id, topic, key, payload) VALUES ($1, $2, $3, $4)",
		eventID, topic, key, data,
	)
	return err
}

func (r *outboxRepo) FetchPending(ctx context.Context, limit int) ([]OutboxRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, event_id, topic, key, payload, created_at, sent_at FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutboxRecord
	for rows.Next() {
		var rec OutboxRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *outboxRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE outbox SET sent_at = now() WHERE id = $1", id)
	return err
}
