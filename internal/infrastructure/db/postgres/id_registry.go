package postgres

import (
	"context"
	"fmt"
	"time"
)

// IDRegistry stores every issued identifier in used_ids.
type IDRegistry struct {
	db DBTX
}

func NewIDRegistry(db DBTX) *IDRegistry {
	return &IDRegistry{db: db}
}

func (r *IDRegistry) Reserve(ctx context.Context, id string, issuedAt time.Time) (bool, error) {
	query :=
		`INSERT INTO used_ids (id, issued_at)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, id, issuedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
