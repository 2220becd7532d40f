package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ksalp/portal/internal/core/domain"
)

// favoritesDelimiter joins favorite lines in the favorites column.
const favoritesDelimiter = "\n"

const userColumns = `id, name, mail, salt, hash, newsletter, created, theme, iframe,
	payment, payment_lite, banned, search, class, grade, favorites`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mail = $1`
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		u                        domain.User
		banned, class, favorites string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.Salt, &u.Hash, &u.Newsletter, &u.CreatedAt,
		&u.Theme, &u.IFrame, &u.Payment, &u.PaymentLite, &banned, &u.Search,
		&class, &u.Grade, &favorites,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.Banned = splitList(banned, domain.ListDelimiter)
	u.Classes = splitList(class, domain.ListDelimiter)
	u.Favorites = splitList(favorites, favoritesDelimiter)
	return &u, nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	query :=
		`INSERT INTO users (` + userColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 `

	_, err := r.db.ExecContext(ctx, query, userArgs(user)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Save upserts by id. The creation time is never overwritten.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	query :=
		`INSERT INTO users (` + userColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   mail = EXCLUDED.mail,
		   salt = EXCLUDED.salt,
		   hash = EXCLUDED.hash,
		   newsletter = EXCLUDED.newsletter,
		   theme = EXCLUDED.theme,
		   iframe = EXCLUDED.iframe,
		   payment = EXCLUDED.payment,
		   payment_lite = EXCLUDED.payment_lite,
		   banned = EXCLUDED.banned,
		   search = EXCLUDED.search,
		   class = EXCLUDED.class,
		   grade = EXCLUDED.grade,
		   favorites = EXCLUDED.favorites
		 `

	_, err := r.db.ExecContext(ctx, query, userArgs(user)...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func userArgs(u *domain.User) []any {
	return []any{
		u.ID, u.Name, u.Email, u.Salt, u.Hash, u.Newsletter, u.CreatedAt,
		u.Theme, u.IFrame, u.Payment, u.PaymentLite,
		strings.Join(u.Banned, domain.ListDelimiter),
		u.Search,
		strings.Join(u.Classes, domain.ListDelimiter),
		u.Grade,
		strings.Join(u.Favorites, favoritesDelimiter),
	}
}

func splitList(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, sep)
}
