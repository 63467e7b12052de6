// Package memory implementa los repositorios del dominio en memoria.
// Driver para desarrollo y tests: mismas garantías de atomicidad que pg,
// logradas con un mutex por repositorio.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/idcore/internal/domain/repository"
)

type Store struct {
	clients *clientRepo
	codes   *codeRepo
	access  *accessTokenRepo
	refresh *refreshTokenRepo
	users   *userRepo
}

func New() *Store {
	return &Store{
		clients: &clientRepo{byClientID: map[string]*repository.Client{}},
		codes:   &codeRepo{byHash: map[string]*repository.AuthorizationCode{}},
		access:  &accessTokenRepo{byHash: map[string]*repository.AccessToken{}},
		refresh: &refreshTokenRepo{byHash: map[string]*repository.RefreshToken{}, byID: map[string]*repository.RefreshToken{}},
		users:   &userRepo{byID: map[string]*repository.User{}},
	}
}

func (s *Store) Clients() repository.ClientRepository             { return s.clients }
func (s *Store) Codes() repository.CodeRepository                 { return s.codes }
func (s *Store) AccessTokens() repository.AccessTokenRepository   { return s.access }
func (s *Store) RefreshTokens() repository.RefreshTokenRepository { return s.refresh }
func (s *Store) Users() repository.UserDirectory                  { return s.users }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// SeedUser agrega un usuario al directory en memoria (solo dev/tests).
func (s *Store) SeedUser(u repository.User) {
	s.users.mu.Lock()
	defer s.users.mu.Unlock()
	cp := u
	s.users.byID[u.ID] = &cp
}

// ─── ClientRepository ───

type clientRepo struct {
	mu         sync.RWMutex
	byClientID map[string]*repository.Client
}

func (r *clientRepo) Create(_ context.Context, c *repository.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byClientID[c.ClientID]; ok {
		return repository.ErrConflict
	}
	cp := *c
	r.byClientID[c.ClientID] = &cp
	return nil
}

func (r *clientRepo) GetByClientID(_ context.Context, clientID string) (*repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byClientID[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *clientRepo) List(_ context.Context) ([]repository.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.Client, 0, len(r.byClientID))
	for _, c := range r.byClientID {
		out = append(out, *c)
	}
	return out, nil
}

func (r *clientRepo) SetActive(_ context.Context, clientID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byClientID[clientID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Active = active
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ─── CodeRepository ───

type codeRepo struct {
	mu     sync.Mutex
	byHash map[string]*repository.AuthorizationCode
}

func (r *codeRepo) Create(_ context.Context, code *repository.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	r.byHash[code.CodeHash] = &cp
	return nil
}

// Consume: el mutex garantiza que solo un caller gana el flip used.
func (r *codeRepo) Consume(_ context.Context, codeHash, clientID string) (*repository.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byHash[codeHash]
	if !ok || c.ClientID != clientID || c.Used {
		return nil, repository.ErrNotFound
	}
	c.Used = true
	cp := *c
	return &cp, nil
}

func (r *codeRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for h, c := range r.byHash {
		if c.ExpiresAt.Before(now) {
			delete(r.byHash, h)
			n++
		}
	}
	return n, nil
}

// ─── AccessTokenRepository ───

type accessTokenRepo struct {
	mu     sync.Mutex
	byHash map[string]*repository.AccessToken
}

func (r *accessTokenRepo) Create(_ context.Context, t *repository.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.byHash[t.TokenHash] = &cp
	return nil
}

func (r *accessTokenRepo) GetByHash(_ context.Context, tokenHash string) (*repository.AccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byHash[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *accessTokenRepo) Revoke(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byHash {
		if t.ID == id && t.RevokedAt == nil {
			at := at
			t.RevokedAt = &at
		}
	}
	return nil
}

// ─── RefreshTokenRepository ───

type refreshTokenRepo struct {
	mu     sync.Mutex
	byHash map[string]*repository.RefreshToken
	byID   map[string]*repository.RefreshToken
}

func (r *refreshTokenRepo) Create(_ context.Context, t *repository.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.byHash[t.TokenHash] = &cp
	r.byID[t.ID] = &cp
	return nil
}

func (r *refreshTokenRepo) GetByHash(_ context.Context, tokenHash string) (*repository.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byHash[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *refreshTokenRepo) Consume(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if t.RevokedAt != nil {
		return false, nil
	}
	at2 := at
	t.RevokedAt = &at2
	return true, nil
}

func (r *refreshTokenRepo) RevokeFamily(_ context.Context, familyID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.byID {
		if t.FamilyID == familyID && t.RevokedAt == nil {
			at2 := at
			t.RevokedAt = &at2
			n++
		}
	}
	return n, nil
}

// ─── UserDirectory ───

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]*repository.User
}

func (r *userRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
