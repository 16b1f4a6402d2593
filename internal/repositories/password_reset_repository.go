package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tamircibul/internal/models"
)

type PasswordResetRepository struct {
	DB *sql.DB
}

// ReplaceToken drops any outstanding tokens for the address and stores the
// new digest; only one reset link is valid per address at a time.
func (r *PasswordResetRepository) ReplaceToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE email = ?`, email); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (email, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, NOW())
	`, email, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// FindValidToken returns the stored token for the digest when it has not
// expired yet.
func (r *PasswordResetRepository) FindValidToken(ctx context.Context, email, tokenHash string) (models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, token_hash, expires_at, created_at
		FROM password_reset_tokens
		WHERE email = ? AND token_hash = ? AND expires_at > NOW()
	`, email, tokenHash).Scan(&token.ID, &token.Email, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PasswordResetToken{}, models.ErrResetTokenInvalid
	}
	if err != nil {
		return models.PasswordResetToken{}, err
	}
	return token, nil
}

// DeleteTokens invalidates every outstanding token for the address.
func (r *PasswordResetRepository) DeleteTokens(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE email = ?`, email)
	return err
}
