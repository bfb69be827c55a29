package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwhitlock/todo-backend/internal/domain"
)

// TokenRepository implements domain.TokenRepository using SQLite.
type TokenRepository struct {
	db *sql.DB
}

func (r *TokenRepository) Revoke(ctx context.Context, token *domain.RevokedToken) error {
	now := time.Now().UTC()
	// INSERT OR IGNORE keeps a repeated logout with the same token harmless.
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		 VALUES (?, ?, ?, ?)`,
		token.JTI, token.UserID, token.ExpiresAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("insert revoked token: %w", err)
	}
	token.RevokedAt = now
	return nil
}

func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query revoked token: %w", err)
	}
	return true, nil
}

func (r *TokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return result.RowsAffected()
}
