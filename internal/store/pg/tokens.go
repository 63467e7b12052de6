package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
)

// ─── AccessTokenRepository ───

type accessTokenRepo struct{ pool *pgxpool.Pool }

func (r *accessTokenRepo) Create(ctx context.Context, t *repository.AccessToken) error {
	const query = `
		INSERT INTO access_tokens (id, token_hash, client_id, user_id, scopes, issued_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.pool.Exec(ctx, query, t.ID, t.TokenHash, t.ClientID, t.UserID, t.Scopes, t.IssuedAt, t.ExpiresAt)
	return err
}

func (r *accessTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*repository.AccessToken, error) {
	const query = `
		SELECT id, token_hash, client_id, user_id, scopes, issued_at, expires_at, revoked_at
		FROM access_tokens WHERE token_hash = $1
	`
	var t repository.AccessToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.TokenHash, &t.ClientID, &t.UserID, &t.Scopes, &t.IssuedAt, &t.ExpiresAt, &t.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *accessTokenRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE access_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

// ─── RefreshTokenRepository ───

type refreshTokenRepo struct{ pool *pgxpool.Pool }

func (r *refreshTokenRepo) Create(ctx context.Context, t *repository.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens
			(id, token_hash, client_id, user_id, scopes, family_id, rotated_from, issued_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID, t.TokenHash, t.ClientID, t.UserID, t.Scopes, t.FamilyID, t.RotatedFrom, t.IssuedAt, t.ExpiresAt,
	)
	return err
}

func (r *refreshTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	const query = `
		SELECT id, token_hash, client_id, user_id, scopes, family_id, rotated_from, issued_at, expires_at, revoked_at
		FROM refresh_tokens WHERE token_hash = $1
	`
	var t repository.RefreshToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.TokenHash, &t.ClientID, &t.UserID, &t.Scopes, &t.FamilyID, &t.RotatedFrom,
		&t.IssuedAt, &t.ExpiresAt, &t.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Consume hace el flip de revocación en un solo UPDATE condicional.
// RowsAffected()==0 significa que otro caller ya consumió el token.
func (r *refreshTokenRepo) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *refreshTokenRepo) RevokeFamily(ctx context.Context, familyID string, at time.Time) (int, error) {
	const query = `UPDATE refresh_tokens SET revoked_at = $2 WHERE family_id = $1 AND revoked_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, familyID, at)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
