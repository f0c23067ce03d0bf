// Package outbox stores events in the same transaction as the state change
// that produced them; a relay publishes them afterwards.
package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/storefront/pkg/contracts"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Record struct {
	ID        int64
	EventID   string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}

// NewOrderEvent builds an event keyed by order id.
func NewOrderEvent(eventType, orderID string, payload map[string]any) contracts.Event {
	return contracts.Event{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}

func Insert(ctx context.Context, db DBTX, topic string, ev contracts.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		ev.EventID, topic, ev.OrderID, data,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func MarkSent(ctx context.Context, db DBTX, id int64) error {
	_, err := db.ExecContext(ctx, `UPDATE outbox SET sent_at = now() WHERE id = $1`, id)
	return err
}

func FetchPending(ctx context.Context, db DBTX, limit int) ([]Record, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, event_id, topic, key, payload, created_at, sent_at FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Store is the pending side of the outbox that a relay drains.
type Store interface {
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, id int64) error
}

type SQLStore struct {
	db DBTX
}

func NewSQLStore(db DBTX) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	return FetchPending(ctx, s.db, limit)
}

func (s *SQLStore) MarkSent(ctx context.Context, id int64) error {
	return MarkSent(ctx, s.db, id)
}

// RelayOnce publishes up to limit pending events in id order and marks each
// sent after a successful publish. It stops at the first publish error so
// ordering per key is preserved; delivery is at least once.
func RelayOnce(ctx context.Context, store Store, pub Publisher, limit int, log *slog.Logger) (int, error) {
	recs, err := store.FetchPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}

	sent := 0
	for _, rec := range recs {
		if err := pub.Publish(ctx, rec.Topic, rec.Key, rec.Payload); err != nil {
			return sent, fmt.Errorf("publish event %s: %w", rec.EventID, err)
		}
		if err := store.MarkSent(ctx, rec.ID); err != nil {
			return sent, fmt.Errorf("mark sent %d: %w", rec.ID, err)
		}
		log.Debug("outbox event relayed", slog.String("event_id", rec.EventID), slog.String("topic", rec.Topic))
		sent++
	}
	return sent, nil
}
