package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ksalp/portal/internal/core/domain"
)

type LoginRepository struct {
	db DBTX
}

func NewLoginRepository(db DBTX) *LoginRepository {
	return &LoginRepository{db: db}
}

func (r *LoginRepository) FindByToken(ctx context.Context, token string) (*domain.Login, error) {
	query := `SELECT id, account, valid, browser FROM login WHERE id = $1`

	var l domain.Login
	err := r.db.QueryRowContext(ctx, query, token).Scan(&l.Token, &l.AccountID, &l.ValidUntil, &l.Fingerprint)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLoginNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &l, nil
}

func (r *LoginRepository) Save(ctx context.Context, login *domain.Login) error {
	query :=
		`INSERT INTO login (id, account, valid, browser)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
		   account = EXCLUDED.account,
		   valid = EXCLUDED.valid,
		   browser = EXCLUDED.browser
		 `

	_, err := r.db.ExecContext(ctx, query, login.Token, login.AccountID, login.ValidUntil, login.Fingerprint)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
