package repository

import (
	"context"
	"time"
)

// AuthorizationCode representa un grant de consentimiento single-use.
// El código en claro se devuelve una sola vez al caller; aquí solo vive
// su hash SHA-256.
type AuthorizationCode struct {
	ID                  string
	CodeHash            string
	ClientID            string // client_id público del client dueño
	UserID              string // referencia opaca al user directory
	RedirectURI         string
	Scopes              []string
	CodeChallenge       string // opcional (PKCE)
	CodeChallengeMethod string // "S256" | "plain" | ""
	Nonce               string // opcional (OIDC)
	ExpiresAt           time.Time
	Used                bool
	CreatedAt           time.Time
}

// CodeRepository define operaciones sobre authorization codes.
type CodeRepository interface {
	// Create persiste un nuevo authorization code (ya hasheado).
	Create(ctx context.Context, code *AuthorizationCode) error

	// Consume hace el flip atómico used=false → used=true y retorna el
	// registro consumido. La condición (code_hash, client_id, used=false)
	// debe evaluarse en una sola operación del driver: ante dos
	// redenciones concurrentes solo una gana.
	// Retorna ErrNotFound si no hay match (inexistente o ya usado).
	// El caller decide qué hacer con códigos expirados: el flip ocurre
	// igualmente, el código queda quemado.
	Consume(ctx context.Context, codeHash, clientID string) (*AuthorizationCode, error)

	// DeleteExpired elimina códigos expirados (reaping oportunista).
	// Retorna el número de filas eliminadas.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
