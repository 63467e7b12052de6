package oauth

import (
	"time"

	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/clock"
	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
	"github.com/dropDatabas3/idcore/internal/store"
)

// Deps contiene las dependencias del dominio oauth.
type Deps struct {
	DAL   store.DataAccessLayer
	Cache cache.Client
	Issue *jwtx.Issuer
	Clock clock.Clock

	ClientCacheTTL time.Duration
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	IDTokenTTL     time.Duration
}

// Services agrupa los services del dominio oauth.
type Services struct {
	Clients    ClientService
	Grants     GrantService
	Tokens     TokenService
	Revoke     RevokeService
	Introspect IntrospectService
}

func issuerBase(i *jwtx.Issuer) string {
	if i == nil {
		return ""
	}
	return i.Iss
}

// NewServices crea el aggregator del dominio oauth.
func NewServices(d Deps) Services {
	clients := NewClientService(ClientDeps{
		DAL:      d.DAL,
		Cache:    d.Cache,
		CacheTTL: d.ClientCacheTTL,
	})
	grants := NewGrantService(GrantDeps{
		DAL:     d.DAL,
		Clients: clients,
		Clock:   d.Clock,
	})
	return Services{
		Clients: clients,
		Grants:  grants,
		Tokens: NewTokenService(TokenDeps{
			DAL:        d.DAL,
			Clients:    clients,
			Grants:     grants,
			Issuer:     d.Issue,
			Clock:      d.Clock,
			AccessTTL:  d.AccessTTL,
			RefreshTTL: d.RefreshTTL,
			IDTokenTTL: d.IDTokenTTL,
		}),
		Revoke:     NewRevokeService(RevokeDeps{DAL: d.DAL, Clock: d.Clock}),
		Introspect: NewIntrospectService(IntrospectDeps{DAL: d.DAL, Clock: d.Clock, Issuer: issuerBase(d.Issue)}),
	}
}
