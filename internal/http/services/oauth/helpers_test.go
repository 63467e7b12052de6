package oauth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/domain/repository"
	"github.com/dropDatabas3/idcore/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
	"github.com/dropDatabas3/idcore/internal/store/memory"
)

func testCtx() context.Context { return context.Background() }

// stepClock es un reloj controlable para simular expiraciones.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	store *memory.Store
	svc   oauth.Services
	clock *stepClock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.New()
	clk := newStepClock()
	svc := oauth.NewServices(oauth.Deps{
		DAL:   s,
		Cache: cache.NewMemory("test"),
		Issue: jwtx.NewIssuer("https://id.test", []byte("test-signing-secret")),
		Clock: clk,
	})
	s.SeedUser(repository.User{
		ID:            "user-1",
		Name:          "Ada Lovelace",
		GivenName:     "Ada",
		FamilyName:    "Lovelace",
		Email:         "ada@example.com",
		EmailVerified: true,
		Picture:       "https://example.com/ada.png",
	})
	return &env{store: s, svc: svc, clock: clk}
}

// seedClient registra un client directamente en el store, salteando el
// service de registro, para fijar exactamente los campos que el test necesita.
func (e *env) seedClient(t *testing.T, c repository.Client) *repository.Client {
	t.Helper()
	if c.ID == "" {
		c.ID = "id-" + c.ClientID
	}
	if len(c.GrantTypes) == 0 {
		c.GrantTypes = []string{"authorization_code", "refresh_token"}
	}
	if c.Type == "" {
		c.Type = repository.ClientTypePublic
	}
	now := e.clock.Now()
	c.Active = true
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := e.store.Clients().Create(testCtx(), &c); err != nil {
		t.Fatalf("seed client %s: %v", c.ClientID, err)
	}
	return &c
}
