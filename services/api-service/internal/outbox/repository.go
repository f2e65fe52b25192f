package outbox

import (
	"context"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/db"
	otelx "github.com/Abhishek-Jatav/bookMyCare/libs/otel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Record is an outbox row waiting to be published.
type Record struct {
	ID          int64     `db:"id"`
	EventID     string    `db:"event_id"`
	AggregateID string    `db:"aggregate_id"`
	EventType   string    `db:"event_type"`
	Payload     []byte    `db:"payload"`
	Traceparent string    `db:"traceparent"`
	Tracestate  string    `db:"tracestate"`
	Attempts    int       `db:"attempts"`
	CreatedAt   time.Time `db:"created_at"`
}

// Repository holds the outbox statements. Every method takes the Querier to
// run on so inserts can share the transaction of the change they describe.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Insert(ctx context.Context, q db.Querier, evt Event) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err := q.Exec(ctx, `
		INSERT INTO outbox_events (event_id, aggregate_type, aggregate_id, event_type, payload, traceparent, tracestate)
		VALUES ($1, $2, $3::bigint, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
	`, evt.EventID, evt.AggregateType, evt.AggregateID, evt.EventType, evt.Payload, traceparent, tracestate)
	return err
}

// Claim locks up to limit unpublished rows in id order. Rows already locked
// by another publisher are skipped.
func (r *Repository) Claim(ctx context.Context, q db.Querier, limit int) ([]Record, error) {
	rows, err := q.Query(ctx, `
		SELECT id,
		       event_id::text AS event_id,
		       aggregate_id::text AS aggregate_id,
		       event_type,
		       payload,
		       COALESCE(traceparent, '') AS traceparent,
		       COALESCE(tracestate, '') AS tracestate,
		       attempts,
		       created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Record])
}

func (r *Repository) MarkPublished(ctx context.Context, q db.Querier, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `UPDATE outbox_events SET published_at = now(), last_error = NULL WHERE id = ANY($1)`, ids)
	return err
}

// RecordFailure bumps the attempt counter so stuck events show up in the table.
func (r *Repository) RecordFailure(ctx context.Context, q db.Querier, ids []int64, cause error) error {
	if len(ids) == 0 || cause == nil {
		return nil
	}
	_, err := q.Exec(ctx, `UPDATE outbox_events SET attempts = attempts + 1, last_error = $2 WHERE id = ANY($1)`, ids, cause.Error())
	return err
}
