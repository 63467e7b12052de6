// Package store define el data access layer del provider.
package store

import (
	"context"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
)

// DataAccessLayer agrupa los repositorios del dominio.
// Implementaciones: pg (producción) y memory (dev/tests).
type DataAccessLayer interface {
	Clients() repository.ClientRepository
	Codes() repository.CodeRepository
	AccessTokens() repository.AccessTokenRepository
	RefreshTokens() repository.RefreshTokenRepository
	Users() repository.UserDirectory

	Ping(ctx context.Context) error
	Close()
}
