// Package inbox remembers which events the consumer has already handled.
package inbox

import (
	"context"

	"github.com/Abhishek-Jatav/bookMyCare/libs/db"
)

type Repository struct {
	q db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Record marks eventID as seen. It reports false when the id was already there.
func (r *Repository) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO inbox_events (event_id, event_type)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, eventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
