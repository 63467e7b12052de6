package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
)

type clientRepo struct{ pool *pgxpool.Pool }

func (r *clientRepo) Create(ctx context.Context, c *repository.Client) error {
	const query = `
		INSERT INTO oauth_clients
			(id, client_id, name, type, secret_hash, redirect_uris, grant_types, scopes,
			 require_pkce, access_token_ttl, refresh_token_ttl, id_token_ttl, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.ClientID, c.Name, c.Type, c.SecretHash, c.RedirectURIs, c.GrantTypes, c.Scopes,
		c.RequirePKCE, c.AccessTokenTTL, c.RefreshTokenTTL, c.IDTokenTTL, c.Active, c.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return repository.ErrConflict
	}
	return err
}

func (r *clientRepo) GetByClientID(ctx context.Context, clientID string) (*repository.Client, error) {
	const query = `
		SELECT id, client_id, name, type, secret_hash, redirect_uris, grant_types, scopes,
		       require_pkce, access_token_ttl, refresh_token_ttl, id_token_ttl, active, created_at, updated_at
		FROM oauth_clients WHERE client_id = $1
	`
	var c repository.Client
	err := r.pool.QueryRow(ctx, query, clientID).Scan(
		&c.ID, &c.ClientID, &c.Name, &c.Type, &c.SecretHash, &c.RedirectURIs, &c.GrantTypes, &c.Scopes,
		&c.RequirePKCE, &c.AccessTokenTTL, &c.RefreshTokenTTL, &c.IDTokenTTL, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *clientRepo) List(ctx context.Context) ([]repository.Client, error) {
	const query = `
		SELECT id, client_id, name, type, secret_hash, redirect_uris, grant_types, scopes,
		       require_pkce, access_token_ttl, refresh_token_ttl, id_token_ttl, active, created_at, updated_at
		FROM oauth_clients ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Client
	for rows.Next() {
		var c repository.Client
		if err := rows.Scan(
			&c.ID, &c.ClientID, &c.Name, &c.Type, &c.SecretHash, &c.RedirectURIs, &c.GrantTypes, &c.Scopes,
			&c.RequirePKCE, &c.AccessTokenTTL, &c.RefreshTokenTTL, &c.IDTokenTTL, &c.Active, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientRepo) SetActive(ctx context.Context, clientID string, active bool) error {
	const query = `UPDATE oauth_clients SET active = $2, updated_at = NOW() WHERE client_id = $1`
	tag, err := r.pool.Exec(ctx, query, clientID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
