package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
)

type codeRepo struct{ pool *pgxpool.Pool }

func (r *codeRepo) Create(ctx context.Context, code *repository.AuthorizationCode) error {
	const query = `
		INSERT INTO authorization_codes
			(id, code_hash, client_id, user_id, redirect_uri, scopes,
			 code_challenge, code_challenge_method, nonce, expires_at, used, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,FALSE,$11)
	`
	_, err := r.pool.Exec(ctx, query,
		code.ID, code.CodeHash, code.ClientID, code.UserID, code.RedirectURI, code.Scopes,
		code.CodeChallenge, code.CodeChallengeMethod, code.Nonce, code.ExpiresAt, code.CreatedAt,
	)
	return err
}

// Consume hace el flip single-use en un solo UPDATE condicional: ante dos
// redenciones concurrentes del mismo código solo una recibe la fila.
func (r *codeRepo) Consume(ctx context.Context, codeHash, clientID string) (*repository.AuthorizationCode, error) {
	const query = `
		UPDATE authorization_codes
		SET used = TRUE
		WHERE code_hash = $1 AND client_id = $2 AND used = FALSE
		RETURNING id, code_hash, client_id, user_id, redirect_uri, scopes,
		          code_challenge, code_challenge_method, nonce, expires_at, used, created_at
	`
	var c repository.AuthorizationCode
	err := r.pool.QueryRow(ctx, query, codeHash, clientID).Scan(
		&c.ID, &c.CodeHash, &c.ClientID, &c.UserID, &c.RedirectURI, &c.Scopes,
		&c.CodeChallenge, &c.CodeChallengeMethod, &c.Nonce, &c.ExpiresAt, &c.Used, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *codeRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	const query = `DELETE FROM authorization_codes WHERE expires_at < $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
