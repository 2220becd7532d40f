package postgres

import (
	"context"
	"fmt"

	"github.com/ksalp/portal/internal/core/domain"
)

type IPScoreRepository struct {
	db DBTX
}

func NewIPScoreRepository(db DBTX) *IPScoreRepository {
	return &IPScoreRepository{db: db}
}

func (r *IPScoreRepository) GetOrCreate(ctx context.Context, ip string, initial int) (*domain.IPScore, error) {
	insert :=
		`INSERT INTO ips (ip, score, notes)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (ip) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, insert, ip, initial, domain.DefaultIPNotes); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var s domain.IPScore
	err := r.db.QueryRowContext(ctx, `SELECT ip, score, notes FROM ips WHERE ip = $1`, ip).
		Scan(&s.IP, &s.Score, &s.Notes)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &s, nil
}

func (r *IPScoreRepository) UpdateScore(ctx context.Context, ip string, score int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE ips SET score = $2 WHERE ip = $1`, ip, score); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
