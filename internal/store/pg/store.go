// Package pg implementa los repositorios del dominio sobre PostgreSQL (pgx).
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
)

type Store struct{ pool *pgxpool.Pool }

// Config tuning opcional del pool.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Pool expone el pool interno para usos avanzados (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Repositorios.
func (s *Store) Clients() repository.ClientRepository           { return &clientRepo{pool: s.pool} }
func (s *Store) Codes() repository.CodeRepository               { return &codeRepo{pool: s.pool} }
func (s *Store) AccessTokens() repository.AccessTokenRepository { return &accessTokenRepo{pool: s.pool} }
func (s *Store) RefreshTokens() repository.RefreshTokenRepository {
	return &refreshTokenRepo{pool: s.pool}
}
func (s *Store) Users() repository.UserDirectory { return &userRepo{pool: s.pool} }
