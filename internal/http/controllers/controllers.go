// Package controllers agrupa todos los controllers HTTP.
package controllers

import (
	"github.com/dropDatabas3/idcore/internal/cache"
	"github.com/dropDatabas3/idcore/internal/http/controllers/health"
	"github.com/dropDatabas3/idcore/internal/http/controllers/oauth"
	"github.com/dropDatabas3/idcore/internal/http/controllers/oidc"
	"github.com/dropDatabas3/idcore/internal/http/services"
	"github.com/dropDatabas3/idcore/internal/store"
)

// Controllers agrupa los controllers por dominio.
type Controllers struct {
	OAuth  oauth.Controllers
	OIDC   oidc.Controllers
	Health *health.Controller
}

// New crea todos los controllers a partir del aggregator de services.
func New(s *services.Services, dal store.DataAccessLayer, c cache.Client) *Controllers {
	return &Controllers{
		OAuth:  oauth.NewControllers(s.OAuth),
		OIDC:   oidc.NewControllers(s.OIDC),
		Health: health.NewController(dal, c),
	}
}
