package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ksalp/portal/internal/core/domain"
)

type MailCheckRepository struct {
	db DBTX
}

func NewMailCheckRepository(db DBTX) *MailCheckRepository {
	return &MailCheckRepository{db: db}
}

func (r *MailCheckRepository) Insert(ctx context.Context, check *domain.MailCheck) error {
	account, err := json.Marshal(check.Account)
	if err != nil {
		return fmt.Errorf("encode pending account: %w", err)
	}

	query :=
		`INSERT INTO mail_check (id, code, account, valid)
		 VALUES ($1, $2, $3, $4)
		 `

	if _, err := r.db.ExecContext(ctx, query, check.ID, check.Code, account, check.ValidUntil); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MailCheckRepository) FindByCode(ctx context.Context, code string) (*domain.MailCheck, error) {
	query := `SELECT id, code, account, valid, consumed_at FROM mail_check WHERE code = $1`

	var (
		c        domain.MailCheck
		account  []byte
		consumed sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, code).Scan(&c.ID, &c.Code, &account, &c.ValidUntil, &consumed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(account, &c.Account); err != nil {
		return nil, fmt.Errorf("decode pending account: %w", err)
	}
	if consumed.Valid {
		at := consumed.Time
		c.ConsumedAt = &at
	}
	return &c, nil
}

// Consume is a single conditional update; the row count decides the race.
func (r *MailCheckRepository) Consume(ctx context.Context, code string, at time.Time) (bool, error) {
	query :=
		`UPDATE mail_check
		 SET consumed_at = $2
		 WHERE code = $1 AND consumed_at IS NULL AND valid > $2
		 `

	res, err := r.db.ExecContext(ctx, query, code, at)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *MailCheckRepository) Release(ctx context.Context, code string) error {
	query := `UPDATE mail_check SET consumed_at = NULL WHERE code = $1`

	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MailCheckRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM mail_check WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
