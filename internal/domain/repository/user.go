package repository

import "context"

// User son los claims de perfil que el user directory resuelve para un
// user_id opaco. El directory es un colaborador externo: el provider
// nunca lo muta, solo lee.
type User struct {
	ID            string
	Name          string
	GivenName     string
	FamilyName    string
	Email         string
	EmailVerified bool
	Picture       string
}

// UserDirectory resuelve identificadores opacos de usuario a claims de perfil.
type UserDirectory interface {
	// GetByID busca un usuario por su ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)
}
