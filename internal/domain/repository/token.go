package repository

import (
	"context"
	"time"
)

// AccessToken representa un access token opaco persistido por hash.
type AccessToken struct {
	ID        string
	TokenHash string
	ClientID  string
	UserID    string
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// RefreshToken representa un refresh token opaco persistido por hash.
// FamilyID se asigna una vez en el grant inicial y se copia en cada
// rotación; revocar la familia invalida todo el linaje.
type RefreshToken struct {
	ID          string
	TokenHash   string
	ClientID    string
	UserID      string
	Scopes      []string
	FamilyID    string
	RotatedFrom *string // ID del token consumido en la rotación anterior
	IssuedAt    time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time
}

// Revoked indica si el access token fue revocado.
func (t *AccessToken) Revoked() bool { return t.RevokedAt != nil }

// Revoked indica si el refresh token fue revocado.
func (t *RefreshToken) Revoked() bool { return t.RevokedAt != nil }

// AccessTokenRepository define operaciones sobre access tokens.
type AccessTokenRepository interface {
	// Create persiste un access token (ya hasheado).
	Create(ctx context.Context, t *AccessToken) error

	// GetByHash busca un access token por su hash.
	// Retorna ErrNotFound si no existe.
	GetByHash(ctx context.Context, tokenHash string) (*AccessToken, error)

	// Revoke marca el token como revocado. Idempotente.
	Revoke(ctx context.Context, id string, at time.Time) error
}

// RefreshTokenRepository define operaciones sobre refresh tokens.
type RefreshTokenRepository interface {
	// Create persiste un refresh token (ya hasheado).
	Create(ctx context.Context, t *RefreshToken) error

	// GetByHash busca un refresh token por su hash.
	// Retorna ErrNotFound si no existe.
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// Consume hace el flip atómico revoked_at NULL → at sobre el token id.
	// Retorna true si este caller ganó el flip; false si el token ya
	// estaba revocado (señal de replay bajo concurrencia).
	Consume(ctx context.Context, id string, at time.Time) (bool, error)

	// RevokeFamily revoca todos los tokens vivos de una familia en una
	// sola operación. Retorna el número de tokens revocados.
	RevokeFamily(ctx context.Context, familyID string, at time.Time) (int, error)
}
