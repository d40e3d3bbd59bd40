package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SergioZanela/ecommerce-project/internal/reset/app"
	"github.com/SergioZanela/ecommerce-project/internal/reset/domain"
)

type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) Create(ctx context.Context, t domain.Token) (domain.Token, error) {
	userUUID, err := uuid.Parse(t.UserID)
	if err != nil {
		return domain.Token{}, fmt.Errorf("invalid user UUID: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO password_reset_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		userUUID, t.Value, t.ExpiresAt,
	)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return domain.Token{}, fmt.Errorf("failed to create reset token: %w", err)
	}
	return t, nil
}

func (r *TokenRepo) Find(ctx context.Context, value string) (domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token = $1`,
		value,
	)

	t, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Token{}, app.ErrInvalidToken
	}
	return t, err
}

// Consume flips used_at and applies the credential in one transaction. The
// conditional update is the concurrency guard: whichever request lands
// first wins, the other sees zero rows and gets ErrInvalidToken.
func (r *TokenRepo) Consume(ctx context.Context, value string, now time.Time, credential string) (domain.Token, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Token{}, err
	}
	defer tx.Rollback()

	var (
		t        domain.Token
		userUUID uuid.UUID
	)
	err = tx.QueryRowContext(ctx, `
		UPDATE password_reset_tokens
		SET used_at = $2
		WHERE token = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING id, user_id, expires_at, created_at`,
		value, now,
	).Scan(&t.ID, &userUUID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Token{}, app.ErrInvalidToken
	}
	if err != nil {
		return domain.Token{}, fmt.Errorf("failed to consume reset token: %w", err)
	}

	t.Value = value
	t.UserID = userUUID.String()
	t.UsedAt = &now

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE id = $1`,
		userUUID, credential,
	); err != nil {
		return domain.Token{}, fmt.Errorf("failed to apply credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Token{}, err
	}
	return t, nil
}

func scanToken(row *sql.Row) (domain.Token, error) {
	var (
		t        domain.Token
		userUUID uuid.UUID
		usedAt   sql.NullTime
	)
	if err := row.Scan(&t.ID, &userUUID, &t.Value, &t.ExpiresAt, &usedAt, &t.CreatedAt); err != nil {
		return domain.Token{}, err
	}
	t.UserID = userUUID.String()
	if usedAt.Valid {
		used := usedAt.Time
		t.UsedAt = &used
	}
	return t, nil
}
