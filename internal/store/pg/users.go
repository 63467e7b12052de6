package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
)

// userRepo es el driver pg del user directory. El provider solo lee:
// la tabla users pertenece a la plataforma que embebe el provider.
type userRepo struct{ pool *pgxpool.Pool }

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	const query = `
		SELECT id, name, given_name, family_name, email, email_verified, picture
		FROM users WHERE id = $1
	`
	var u repository.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.GivenName, &u.FamilyName, &u.Email, &u.EmailVerified, &u.Picture,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
