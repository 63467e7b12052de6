package repository

import (
	"context"
	"time"
)

const (
	ClientTypePublic       = "public"
	ClientTypeConfidential = "confidential"
)

// Client representa un cliente OIDC/OAuth registrado.
// Invariante: un client confidential siempre tiene SecretHash;
// un client public nunca lo tiene.
type Client struct {
	ID           string // UUID interno
	ClientID     string // identificador público, generado por el provider
	Name         string
	Type         string // "public" | "confidential"
	SecretHash   string // PHC argon2id; vacío para clients public
	RedirectURIs []string
	GrantTypes   []string // default: authorization_code, refresh_token
	Scopes       []string // scopes permitidos
	RequirePKCE  bool

	// TTLs por client, en segundos. 0 = default del servicio.
	AccessTokenTTL  int
	RefreshTokenTTL int
	IDTokenTTL      int

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientRepository define operaciones sobre OAuth clients.
type ClientRepository interface {
	// Create crea un nuevo client.
	// Retorna ErrConflict si el client_id ya existe.
	Create(ctx context.Context, c *Client) error

	// GetByClientID obtiene un client por su client_id público,
	// incluyendo clients inactivos (el caller filtra).
	// Retorna ErrNotFound si no existe.
	GetByClientID(ctx context.Context, clientID string) (*Client, error)

	// List lista todos los clients registrados.
	List(ctx context.Context) ([]Client, error)

	// SetActive habilita/deshabilita un client.
	SetActive(ctx context.Context, clientID string, active bool) error
}
