// Package services agrupa todos los services HTTP.
// Este es el "composition root" de services: el único lugar donde se
// instancian.
package services

import (
	"time"

	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/http/services/oauth"
	"github.com/dropDatabas3/idcore/internal/http/services/oidc"
	jwtx "github.com/dropDatabas3/idcore/internal/jwt"
	"github.com/dropDatabas3/idcore/internal/store"
)

// Deps contiene las dependencias base para crear los services.
type Deps struct {
	// ─── Infraestructura ───
	DAL    store.DataAccessLayer
	Cache  cache.Client
	Issuer *jwtx.Issuer
	Clock  clock.Clock

	// ─── Configuración ───
	BaseIssuer     string        // issuer base (ej: "https://id.example.com")
	ClientCacheTTL time.Duration // TTL del cache del client registry
	AccessTTL      time.Duration // default access token TTL
	RefreshTTL     time.Duration // default refresh token TTL
	IDTokenTTL     time.Duration // default ID token TTL
}

// Services agrupa todos los sub-services por dominio.
type Services struct {
	OAuth oauth.Services // token, revoke, introspect, clients, grants
	OIDC  oidc.Services  // discovery, userinfo
}

// New crea el agregador de services con todas las dependencias inyectadas.
func New(d Deps) *Services {
	return &Services{
		OAuth: oauth.NewServices(oauth.Deps{
			DAL:            d.DAL,
			Cache:          d.Cache,
			Issue:          d.Issuer,
			Clock:          d.Clock,
			ClientCacheTTL: d.ClientCacheTTL,
			AccessTTL:      d.AccessTTL,
			RefreshTTL:     d.RefreshTTL,
			IDTokenTTL:     d.IDTokenTTL,
		}),
		OIDC: oidc.NewServices(oidc.Deps{
			DAL:    d.DAL,
			Clock:  d.Clock,
			Issuer: d.BaseIssuer,
		}),
	}
}
