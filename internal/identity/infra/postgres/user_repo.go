package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/SergioZanela/ecommerce-project/internal/identity/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) ByID(ctx context.Context, id string) (domain.User, error) {
	userUUID, err := uuid.Parse(id)
	if err != nil {
		return domain.User{}, domain.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email FROM users WHERE id = $1`,
		userUUID,
	)
	return scanUser(row)
}

// ByEmail matches case-insensitively, the way the login surface does.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, email FROM users
		WHERE LOWER(email) = LOWER($1) AND email <> ''`,
		email,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u      domain.User
		userID uuid.UUID
	)
	err := row.Scan(&userID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	u.ID = userID.String()
	return u, nil
}
