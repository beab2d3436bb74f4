package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"chat_gateway_service/internal/chat/domain"
	errprocess "chat_gateway_service/pkg/err"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const createTokenTable = `
CREATE TABLE IF NOT EXISTS auth_tokens (
	key        VARCHAR(40) PRIMARY KEY,
	user_id    BIGINT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type tokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository create opaque token TokenIssuer on the auth_tokens table
func NewTokenRepository(db *pgxpool.Pool) TokenIssuer {
	return &tokenRepository{db: db}
}

// MigrateTokens create auth_tokens when missing
func MigrateTokens(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, createTokenTable); err != nil {
		return errprocess.Wrap("create auth_tokens", err)
	}
	return nil
}

func (r *tokenRepository) Resolve(ctx context.Context, credential string) (int64, error) {
	var userID int64
	err := r.db.QueryRow(ctx, "SELECT user_id FROM auth_tokens WHERE key = $1", credential).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("resolve token: %w", err)
	}
	return userID, nil
}

// Issue return the user's token, creating it on first login
func (r *tokenRepository) Issue(ctx context.Context, userID int64) (string, error) {
	key, err := newTokenKey()
	if err != nil {
		return "", err
	}

	var stored domain.AuthToken
	err = r.db.QueryRow(ctx, `
		INSERT INTO auth_tokens (key, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING key, user_id, created_at`, key, userID).
		Scan(&stored.Key, &stored.UserID, &stored.CreatedAt)
	if err != nil {
		return "", errprocess.Wrap("issue token", err)
	}
	return stored.Key, nil
}

// newTokenKey 40 hex chars
func newTokenKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
