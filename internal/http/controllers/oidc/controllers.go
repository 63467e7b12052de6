package oidc

import svc "github.com/dropDatabas3/idcore/internal/http/services/oidc"

// Controllers agrupa los controllers del dominio oidc.
type Controllers struct {
	Discovery *DiscoveryController
	UserInfo  *UserInfoController
}

// NewControllers crea los controllers a partir de los services del dominio.
func NewControllers(s svc.Services) Controllers {
	return Controllers{
		Discovery: NewDiscoveryController(s.Discovery),
		UserInfo:  NewUserInfoController(s.UserInfo),
	}
}
