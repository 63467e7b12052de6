package oidc

import (
	"github.com/dropDatabas3/idcore/internal/clock"
	"github.com/dropDatabas3/idcore/internal/store"
)

// Deps contiene las dependencias del dominio oidc.
type Deps struct {
	DAL    store.DataAccessLayer
	Clock  clock.Clock
	Issuer string // issuer base URL
}

// Services agrupa los services del dominio oidc.
type Services struct {
	Discovery DiscoveryService
	UserInfo  UserInfoService
}

// NewServices crea el aggregator del dominio oidc.
func NewServices(d Deps) Services {
	return Services{
		Discovery: NewDiscoveryService(d.Issuer),
		UserInfo:  NewUserInfoService(UserInfoDeps{DAL: d.DAL, Clock: d.Clock}),
	}
}
